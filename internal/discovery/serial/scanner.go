// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// PortInfo describes one serial port visible to the host
type PortInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// Label is the "name - description" form shown in port pickers
func (p PortInfo) Label() string {
	if p.Description == "" {
		return p.Name
	}
	return fmt.Sprintf("%s - %s", p.Name, p.Description)
}

// Lister returns the detailed port list
type Lister func() ([]*enumerator.PortDetails, error)

// Scanner enumerates serial ports
type Scanner struct {
	logger *zap.Logger
	list   Lister
}

// NewScanner creates a scanner backed by the OS enumerator
func NewScanner(logger *zap.Logger) *Scanner {
	return NewScannerWithLister(logger, enumerator.GetDetailedPortsList)
}

// NewScannerWithLister creates a scanner with a custom port source
func NewScannerWithLister(logger *zap.Logger, list Lister) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		logger: logger.With(zap.String("scanner", "serial")),
		list:   list,
	}
}

// Scan lists the available serial ports sorted by name
func (s *Scanner) Scan(ctx context.Context) ([]PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := s.list()
	if err != nil {
		s.logger.Error("Failed to enumerate serial ports", zap.Error(err))
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		info := PortInfo{
			Name:         d.Name,
			Description:  strings.TrimSpace(d.Product),
			IsUSB:        d.IsUSB,
			SerialNumber: d.SerialNumber,
		}
		if d.IsUSB {
			info.VID = strings.ToUpper(d.VID)
			info.PID = strings.ToUpper(d.PID)
			if info.Description == "" {
				info.Description = fmt.Sprintf("USB VID:PID=%s:%s", info.VID, info.PID)
			}
		}
		ports = append(ports, info)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })

	s.logger.Debug("Serial scan completed", zap.Int("ports_found", len(ports)))
	return ports, nil
}

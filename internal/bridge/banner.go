// internal/bridge/banner.go
package bridge

import "strings"

// headerPrefixes match the title and status lines of the boot menu
var headerPrefixes = []string{
	"===",
	"Comandos",
	"UART a",
	"Estado:",
}

// usageCommands are the indented entries of the boot menu usage listing
var usageCommands = []string{
	"ping",
	"pwm",
	"servo",
	"neo",
	"digital",
	"reset",
}

// IsBannerLine reports whether a line is boot menu text rather than data.
// An indented usage entry ("  pwm ...") is always menu text. Lines arrive
// trimmed from the reader, so a bare entry counts as menu text only in the
// listing shape: the command alone, or followed by an argument placeholder
// such as "<1-4>" or "- description". Board replies like "pwm 1 200 ok" are
// kept.
func IsBannerLine(line string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	for _, cmd := range usageCommands {
		if strings.HasPrefix(line, "  "+cmd) {
			return true
		}
	}

	entry := strings.TrimLeft(line, " \t")
	for _, cmd := range usageCommands {
		if entry == cmd {
			return true
		}
		if rest, ok := strings.CutPrefix(entry, cmd+" "); ok && isUsageArgs(rest) {
			return true
		}
	}
	return false
}

// isUsageArgs reports whether the text after a command name reads as an
// argument placeholder or a description rather than values
func isUsageArgs(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && strings.ContainsRune("<[(-:", rune(rest[0]))
}

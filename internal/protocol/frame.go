// internal/protocol/frame.go
package protocol

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// FrameKind tells text lines from protocol bytes
type FrameKind int

const (
	FrameTextLine FrameKind = iota
	FrameProtocolByte
)

// Frame is one unit pulled off the byte stream
type Frame struct {
	Kind FrameKind
	Text string
	Byte byte
}

// TextLine builds a text frame
func TextLine(s string) Frame {
	return Frame{Kind: FrameTextLine, Text: s}
}

// ProtocolByte builds a protocol byte frame
func ProtocolByte(b byte) Frame {
	return Frame{Kind: FrameProtocolByte, Byte: b}
}

func (f Frame) String() string {
	if f.Kind == FrameProtocolByte {
		return fmt.Sprintf("ProtocolByte(0x%02X)", f.Byte)
	}
	return fmt.Sprintf("TextLine(%q)", f.Text)
}

// IsProtocolByte reports whether b cannot start a text line: anything outside
// printable ASCII except TAB, CR and LF.
func IsProtocolByte(b byte) bool {
	if b >= 0x20 && b <= 0x7E {
		return false
	}
	return b != '\t' && b != '\r' && b != '\n'
}

// FrameBuffer accumulates raw bytes and hands out frames in arrival order.
// It is not safe for concurrent use.
type FrameBuffer struct {
	buf []byte
}

// Append adds received bytes to the end of the buffer
func (fb *FrameBuffer) Append(p []byte) {
	fb.buf = append(fb.buf, p...)
}

// Len returns the number of buffered bytes
func (fb *FrameBuffer) Len() int {
	return len(fb.buf)
}

// Reset drops all buffered bytes
func (fb *FrameBuffer) Reset() {
	fb.buf = fb.buf[:0]
}

// Next extracts at most one frame. It returns false when nothing was emitted,
// either because more bytes are needed or because a blank line was consumed.
//
// A leading protocol byte is popped before any line search, so an
// acknowledgement code that arrives ahead of a text line is never glued to
// it. Lines end at the first '\n'; a '\r' right before it belongs to the
// separator.
func (fb *FrameBuffer) Next() (Frame, bool) {
	if len(fb.buf) == 0 {
		return Frame{}, false
	}

	if b := fb.buf[0]; IsProtocolByte(b) {
		fb.consume(1)
		return ProtocolByte(b), true
	}

	idx := bytes.IndexByte(fb.buf, '\n')
	if idx < 0 {
		return Frame{}, false
	}

	end := idx
	if end > 0 && fb.buf[end-1] == '\r' {
		end--
	}
	line := strings.TrimSpace(decodeLatin1(fb.buf[:end]))
	fb.consume(idx + 1)

	if line == "" {
		return Frame{}, false
	}
	return TextLine(line), true
}

func (fb *FrameBuffer) consume(n int) {
	rest := copy(fb.buf, fb.buf[n:])
	fb.buf = fb.buf[:rest]
}

// decodeLatin1 maps every byte to a rune, so it never fails
func decodeLatin1(p []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(p)
	if err != nil {
		return strings.ToValidUTF8(string(p), "�")
	}
	return string(out)
}

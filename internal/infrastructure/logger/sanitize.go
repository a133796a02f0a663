package logger

import (
	"fmt"
	"strings"
)

// Sanitize escapes control characters in externally sourced strings (video
// titles, yt-dlp stderr) before they reach a log line. Unicode is preserved;
// newlines, tabs, NUL and ANSI escapes are rendered as literal escapes so a
// hostile title cannot forge log entries or drive the terminal.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString("\\n")
		case r == '\r':
			b.WriteString("\\r")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			fmt.Fprintf(&b, "\\x%02x", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

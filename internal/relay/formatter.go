package relay

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	alertHeader     = "🔥 TRADING SIGNAL 🔥"
	alertTimeLayout = "2006-01-02 15:04:05"
)

// FormatAlert wraps a matched message in the outbound alert template.
// The raw text is preserved verbatim between the header and the
// timestamp line.
func FormatAlert(raw string, at time.Time) string {
	var b strings.Builder
	b.Grow(len(alertHeader) + len(raw) + 32)
	b.WriteString(alertHeader)
	b.WriteString("\n\n")
	b.WriteString(raw)
	b.WriteString("\n\n⏰ Time: ")
	b.WriteString(at.Format(alertTimeLayout))
	return b.String()
}

// Truncate shortens s for log output, cutting on a rune boundary so the
// result stays valid UTF-8. Forwarded payloads are never truncated; this
// is diagnostic only.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

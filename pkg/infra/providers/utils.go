package providers

import (
	"strconv"
	"strings"
)

// FormatInstructions renders rules as a numbered list for a system message. Blank rules are
// skipped; with nothing left the result is empty.
func FormatInstructions(rules []string) string {
	var b strings.Builder
	n := 0
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		if n == 0 {
			b.WriteString("Follow these rules:\n")
		}
		n++
		b.WriteString(strconv.Itoa(n))
		b.WriteString(". ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

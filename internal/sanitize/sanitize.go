// Package sanitize normalizes string fields of a crash report before storage.
package sanitize

import "strings"

// MaxFieldChars is a hard cap applied to every sanitized string, independent
// of any per-field validation limit.
const MaxFieldChars = 10000

// String cleans s for storage: ASCII control characters (0x00-0x1F, 0x7F) and
// angle brackets are dropped, surrounding whitespace is trimmed, and the
// result is truncated to MaxFieldChars characters. Sanitizing an already
// sanitized string returns it unchanged; an empty string stays empty.
func String(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > MaxFieldChars {
		// Trim again: the cut can leave trailing whitespace, and sanitizing
		// twice must give the same result.
		out = strings.TrimSpace(string(runes[:MaxFieldChars]))
	}
	return out
}

package textutil

import "strings"

// SanitizeToken converts a string to a lowercase filesystem-safe token for
// artifact names. Letters and digits are kept, runs of anything else collapse
// to a single underscore, and hyphens survive. Returns "unknown" for input
// with nothing usable.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	pending := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		default:
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('_')
		}
		pending = false
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

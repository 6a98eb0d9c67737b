package internal

import (
	"strings"
	"unicode"
)

// Version is the release version reported by the CLI and sent in the
// User-Agent header
const Version = "0.3.0"

// SanitizeFilename creates a safe filename from a string. Letters and
// digits of any script are kept; everything else becomes an underscore.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

package validators

import "strings"

// SanitizeString trims surrounding whitespace, drops control characters and
// enforces a byte ceiling on free-text input. Zero maxLen means unbounded.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 && len(cleaned) > maxLen {
		return cleaned[:maxLen]
	}
	return cleaned
}

package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// ParseInputStringPtr treats nil as the empty string.
func ParseInputStringPtr(input *string) string {
	if input == nil {
		return ""
	}
	return strings.TrimSpace(*input)
}

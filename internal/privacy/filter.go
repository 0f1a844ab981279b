// Package privacy masks personal names and redacts contact details from
// free text before it is shown publicly.
package privacy

import (
	"regexp"
	"strings"
)

const (
	MaskChar = "*"

	PhonePlaceholder = "[电话号码已隐藏]"
	EmailPlaceholder = "[邮箱已隐藏]"
	CardPlaceholder  = "[卡号已隐藏]"
)

// Patterns are textual, not validators: "123-456-7890" inside a longer
// number string is not matched and an obviously fake address still is.
var (
	phonePattern = regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	cardPattern  = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\s?\d{4}\b`)
)

// MaskName keeps the first character (and the last, for names of four or
// more characters) and replaces the rest with MaskChar.
func MaskName(name string) string {
	runes := []rune(name)
	switch n := len(runes); {
	case n < 2:
		return name
	case n == 2:
		return string(runes[0]) + MaskChar
	case n == 3:
		return string(runes[0]) + strings.Repeat(MaskChar, 2)
	default:
		return string(runes[0]) + strings.Repeat(MaskChar, n-2) + string(runes[n-1])
	}
}

// SanitizeContent replaces phone numbers, email addresses and card numbers
// with fixed placeholders, in that order.
func SanitizeContent(text string) string {
	text = phonePattern.ReplaceAllLiteralString(text, PhonePlaceholder)
	text = emailPattern.ReplaceAllLiteralString(text, EmailPlaceholder)
	return cardPattern.ReplaceAllLiteralString(text, CardPlaceholder)
}

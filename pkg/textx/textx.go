// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	return strings.TrimSpace(StripControl(s))
}

// StripControl drops control characters other than tab, newline and carriage
// return, leaving surrounding whitespace intact. Code submissions go through
// this rather than SanitizeText so indentation survives.
func StripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeWhitespace trims s and collapses every whitespace run to one space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// SameCode reports whether a and b are equal after whitespace normalization.
func SameCode(a, b string) bool {
	return NormalizeWhitespace(a) == NormalizeWhitespace(b)
}

// Len counts runes so multi-byte text is measured the way users see it.
func Len(s string) int { return utf8.RuneCountInString(s) }

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Coalesce returns the first non-zero value.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SanitizeString drops control characters and collapses runs of whitespace
// into one space, trimming both ends. Used on free-text search input.
func SanitizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsControl(r):
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskSecret keeps the first visible runes of a secret and replaces the
// rest with "***". Secrets not longer than visible are masked entirely.
func MaskSecret(s string, visible int) string {
	if utf8.RuneCountInString(s) <= visible {
		return "***"
	}
	return string([]rune(s)[:visible]) + "***"
}

// Truncate shortens s to at most max runes, ending it with "…" when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

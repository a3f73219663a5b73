// Package sanitizer normalizes free-text input before validation and
// persistence. Reservation purposes arrive from UI forms and may carry
// stray whitespace and control characters.
package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func collapseWhitespace(s string) string {
	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizePurpose normalizes a reservation purpose: control characters
// removed, whitespace runs collapsed, surrounding space trimmed.
func SanitizePurpose(input string) string {
	p := Pipeline{
		collapseWhitespace,
		stripControl,
		strings.TrimSpace,
	}
	return p.Apply(input)
}

// SanitizeName normalizes short identifying labels such as room and
// building names.
func SanitizeName(input string) string {
	p := Pipeline{
		collapseWhitespace,
		stripControl,
		strings.TrimSpace,
	}
	return p.Apply(input)
}

// Package phone normalizes contact phone numbers for storage and dispatch.
package phone

import (
	"strings"
	"unicode"
)

// ForImport normalizes a phone number read from an import file.
// The value is trimmed, prefixed with the default country code when it has
// no leading "+", and stripped of all whitespace. Empty input stays empty.
func ForImport(raw, defaultCountryCode string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "+") {
		p = defaultCountryCode + p
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, p)
}

// ForDispatch returns the E.164 form used when sending: "+" followed by digits.
// Numbers without a leading "+" get the digits of the default country code.
func ForDispatch(raw, defaultCountryCode string) string {
	if strings.HasPrefix(raw, "+") {
		return "+" + Digits(raw)
	}
	return "+" + Digits(defaultCountryCode) + Digits(raw)
}

// Wire returns the digits-only form the provider expects in the "to" field.
func Wire(e164 string) string {
	return Digits(e164)
}

// Digits drops every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

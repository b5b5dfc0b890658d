// Package format holds the small text helpers the admin UI applies to
// client data: Brazilian phone/CPF masks and display-name casing.
package format

import (
	"strings"
	"unicode"
)

// DigitsOnly strips everything except decimal digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CapitalizeName title-cases every word and collapses repeated spaces,
// e.g. "MARIA  da  SILVA" -> "Maria Da Silva".
func CapitalizeName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// MaskPhone formats a Brazilian phone number progressively, so partial
// input renders as far as the digits allow: "(DD) DDDDD-DDDD". Applying
// it to already-masked output changes nothing.
func MaskPhone(s string) string {
	d := DigitsOnly(s)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// MaskCPF formats a CPF progressively: "DDD.DDD.DDD-DD".
func MaskCPF(s string) string {
	d := DigitsOnly(s)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

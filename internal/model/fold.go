package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fold is the comparison key for plant names: trimmed, NFC-composed and
// lowercased. Every lookup, cache key and match uses it.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

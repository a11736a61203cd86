package main

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sanitizeString makes a node identifier usable as a label or MQTT ID:
// lower case ASCII without diacritics, spaces replaced by underscores.
func sanitizeString(s string) string {
	t := transform.Chain(
		// Split runes with diacritics into base character and mark.
		norm.NFD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII || unicode.IsControl(r)
		})))
	res, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return strings.ReplaceAll(strings.ToLower(res), " ", "_")
}

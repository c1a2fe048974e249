package taxonomy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric   = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedSeparator = regexp.MustCompile(`_+`)
)

// Fold reduces free text to the key form used by taxonomy values.
// "Prato Principal" -> "prato_principal".
// "Cartão Postal" -> "cartao_postal".
// "  Boné!! " -> "bone".
func Fold(s string) string {
	// Decompose accented characters so the base letter survives.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	s = repeatedSeparator.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into a base letter plus a combining mark.
	letterReplacer = strings.NewReplacer(
		"ı", "i", "ø", "o", "ł", "l", "đ", "d", "ß", "ss", "æ", "ae", "œ", "oe", "&", " and ",
	)
)

// Generate creates a URL-friendly slug from the given name. Accented letters
// are folded to their ASCII base.
//
// Examples:
//   - "Calacatta Oro" → "calacatta-oro"
//   - "Pietra Grígia" → "pietra-grigia"
//   - "Stone & Wood  60×120" → "stone-and-wood-60-120"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = letterReplacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Unique returns base, or base with the smallest numeric suffix ("-2", "-3",
// ...) that taken does not report as used. An empty base becomes "item".
func Unique(base string, taken func(string) bool) string {
	if base == "" {
		base = "item"
	}
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

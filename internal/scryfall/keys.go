package scryfall

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CacheKeyPrefix prefixes every key the client writes.
const CacheKeyPrefix = "scryfall_"

// NameKey returns the cache key for an exact-name lookup.
func NameKey(name string) string {
	key := sanitizeKey(name)
	if key == "" {
		key = url.PathEscape(strings.ToLower(strings.TrimSpace(name)))
	}
	return CacheKeyPrefix + "name_" + key
}

// SetKey returns the cache key for a set + collector number lookup. Both parts
// are kept verbatim apart from case: "1" and "1★" are different printings.
func SetKey(setCode, collectorNumber string) string {
	return CacheKeyPrefix + keyPart(setCode) + "_" + keyPart(collectorNumber)
}

func keyPart(s string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(s)))
}

// sanitizeKey folds accents, lower-cases, and collapses every run of characters
// that are neither letters nor digits into a single "-". "Lim-Dûl's Vault"
// becomes "lim-dul-s-vault".
func sanitizeKey(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Package slug derives the human-facing course identifiers. Slugs are
// globally unique; collisions are disambiguated with a numeric suffix
// (base, base-1, base-2, ...).
package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases, strips diacritics and collapses every run of
// non-alphanumeric characters into a single hyphen.
// "Física I" -> "fisica-i".
func Make(title string) string {
	folded, _, err := transform.String(deaccent, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Taken reports whether a candidate slug is already in use. The ignore
// id (when non-empty) lets a course keep its own slug across updates.
type Taken func(ctx context.Context, candidate string) (bool, error)

// Unique returns the first free slug in the sequence base, base-1,
// base-2, ...
func Unique(ctx context.Context, title string, taken Taken) (string, error) {
	base := Make(title)
	if base == "" {
		base = "course"
	}
	candidate := base
	for i := 1; ; i++ {
		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)

	// Decompose, strip combining marks, recompose. Folds "Gedenkstätte"
	// to "Gedenkstatte" before the ASCII slug pipeline runs.
	foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify converts a detail title to its canonical URL slug. The slug is
// deterministic: projecting the same title always yields the same slug,
// which the search index relies on for slug lookups.
//
// Rules:
//  1. Fold diacritics to their base letters
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores and slashes with dashes
//  4. Remove remaining non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes, trim leading/trailing dashes
//
// Examples:
//
//	"Berlin Wall Memorial"  → "berlin-wall-memorial"
//	"Gedenkstätte Berliner Mauer" → "gedenkstatte-berliner-mauer"
//	"  Pont d'Avignon " → "pont-davignon"
func Slugify(input string) string {
	s, _, err := transform.String(foldTransformer, input)
	if err != nil {
		s = input
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

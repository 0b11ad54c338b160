// Text canonicalization for fuzzy track matching.
//
// Catalog metadata and AI output rarely agree byte-for-byte: casing,
// diacritics, feature tags and parenthetical annotations ("Remastered 2011",
// "feat. Drake") all vary. Comparisons run on normalized forms instead.
package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	annotationRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	featureRe    = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRe      = regexp.MustCompile(`\s+`)

	seedSplitRe   = regexp.MustCompile(`(?i)\s+by\s+|\s+-\s+|\s+–\s+|\s+—\s+|\s*\|\s*`)
	artistSplitRe = regexp.MustCompile(`(?i)\s*(?:,|&|feat\.?|ft\.?|with)\s*`)
)

// Normalize canonicalizes a free-text title or artist for comparison:
// lower-cased, diacritics folded, feature tags and parenthetical annotations
// stripped, punctuation removed, whitespace collapsed.
func Normalize(value string) string {
	value = strings.ToLower(value)
	value = foldDiacritics(value)
	value = annotationRe.ReplaceAllString(value, " ")
	value = featureRe.ReplaceAllString(value, " ")
	value = punctRe.ReplaceAllString(value, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(value, " "))
}

// NormalizeTrackKey builds a stable "title|artist" key for run-local deduplication maps.
func NormalizeTrackKey(title, artist string) string {
	return Normalize(title) + "|" + Normalize(artist)
}

// TokenSetRatio computes Jaccard similarity in [0,1] over normalized word tokens.
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for token := range ta {
		if _, ok := tb[token]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection

	return float64(intersection) / float64(union)
}

// ParseSeedText splits freeform seed input like "Lahore by Guru Randhawa" or
// "Song - Artist" into a title and an optional artist hint list.
func ParseSeedText(text string) (string, []string) {
	parts := seedSplitRe.Split(text, 2)
	title := strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return title, nil
	}

	var artists []string
	for _, a := range artistSplitRe.Split(parts[1], -1) {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	return title, artists
}

func tokenSet(value string) map[string]struct{} {
	tokens := strings.Fields(Normalize(value))
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// foldDiacritics removes combining marks after canonical decomposition, so
// "Beyoncé" compares equal to "Beyonce".
func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

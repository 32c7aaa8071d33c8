package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// qualifierPattern matches release qualifiers that differ between catalogs
// for the same recording: "- Remastered 2009", "(Live)", "[feat. X]", ...
var qualifierPattern = regexp.MustCompile(`(?i)\s*(\(|\[|-\s)[^()\[\]]*\b(remaster(ed)?|version|edit|mix|mono|stereo|live|feat\.?|featuring|with|single|deluxe|anniversary|bonus)\b[^()\[\]]*(\)|\]|$)`)

var folder = cases.Fold()

// Fold lowercases text and strips diacritics so "Beyoncé" and "BEYONCE"
// compare equal.
func Fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return folder.String(stripped)
}

// StripQualifiers removes edition and featuring annotations from a title.
func StripQualifiers(title string) string {
	cleaned := title
	for {
		next := qualifierPattern.ReplaceAllString(cleaned, "")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from the provided text.
// Returns nil if the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(sum),
	}
}

// Tokenize folds text and splits it into tokens. Single characters are
// dropped except digits, which carry meaning in titles like "1999" or "7".
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(Fold(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		if len([]rune(token)) < 2 && !unicode.IsDigit([]rune(token)[0]) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips combining marks and collapses every run of
// non-alphanumeric characters into a single space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// Casers are stateful; one per call keeps Normalize goroutine safe.
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// sortTokens reorders the space-separated tokens of a normalized string.
func sortTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// ratio converts a bounded edit distance into a [0,1] similarity.
func ratio(a, b string, p *levenshtein.Params) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	d := levenshtein.Distance(a, b, p)
	s := 1 - float64(d)/float64(maxLen)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Similarity scores two strings in [0,1]. Both sides are normalized and
// scored as written and with their tokens sorted; the better score wins, so
// "New York City" and "City of New York" still score well.
func Similarity(a, b string, maxCost int) float64 {
	return similarityNormalized(Normalize(a), Normalize(b), params(maxCost))
}

func similarityNormalized(a, b string, p *levenshtein.Params) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	s := ratio(a, b, p)
	if strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ') {
		if ts := ratio(sortTokens(a), sortTokens(b), p); ts > s {
			s = ts
		}
	}
	return s
}

func params(maxCost int) *levenshtein.Params {
	p := levenshtein.NewParams()
	if maxCost > 0 {
		p = p.MaxCost(maxCost)
	}
	return p
}

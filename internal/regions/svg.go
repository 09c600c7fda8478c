package regions

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// ErrNoRegions marks a geometry document that produced no candidates. It is a
// soft condition: matching proceeds and every row ends up unmatched.
var ErrNoRegions = eris.New("no regions extracted")

// Options tunes which identifiers count as regions.
type Options struct {
	// ReservedPrefixes drops ids generated for definitions, metadata and
	// editor bookkeeping. Compared case-insensitively; the prefix must end
	// the id or be followed by a non-letter, so "marker3" is dropped and
	// "Markermeer" is kept.
	ReservedPrefixes []string
	// StyleMarker drops class tokens that contain it (generated styling classes).
	StyleMarker string
	// MinClassLen drops shorter class tokens.
	MinClassLen int
}

// DefaultOptions returns the extractor defaults.
func DefaultOptions() Options {
	return Options{
		ReservedPrefixes: []string{
			"defs", "metadata", "namedview", "sodipodi", "inkscape",
			"clippath", "clip-path", "lineargradient", "radialgradient",
			"pattern", "mask", "filter", "marker", "layer",
		},
		StyleMarker: "style",
		MinClassLen: 3,
	}
}

var (
	idAttr    = regexp.MustCompile(`(?:^|\s)id\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	classAttr = regexp.MustCompile(`(?:^|\s)class\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// ExtractSVG scans markup for element ids and class tokens and returns the
// sorted, deduplicated candidate set. Well-formedness is not checked.
func ExtractSVG(markup string, opt Options) []string {
	set := make(map[string]struct{})
	for _, m := range idAttr.FindAllStringSubmatch(markup, -1) {
		id := strings.TrimSpace(attrValue(m))
		if id == "" || reserved(id, opt.ReservedPrefixes) {
			continue
		}
		set[id] = struct{}{}
	}
	marker := strings.ToLower(opt.StyleMarker)
	for _, m := range classAttr.FindAllStringSubmatch(markup, -1) {
		for _, tok := range strings.Fields(attrValue(m)) {
			if len(tok) < opt.MinClassLen {
				continue
			}
			if marker != "" && strings.Contains(strings.ToLower(tok), marker) {
				continue
			}
			set[tok] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func attrValue(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func reserved(id string, prefixes []string) bool {
	lower := strings.ToLower(id)
	for _, p := range prefixes {
		p = strings.ToLower(p)
		if p == "" || !strings.HasPrefix(lower, p) {
			continue
		}
		rest := lower[len(p):]
		if rest == "" {
			return true
		}
		if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

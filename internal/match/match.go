package match

import (
	"context"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reason records how a suggestion was found.
type Reason string

const (
	ReasonExact Reason = "exact"
	ReasonAlias Reason = "alias"
	ReasonFuzzy Reason = "fuzzy"
)

// AliasConfidence is reported for alias hits.
const AliasConfidence = 0.95

// Suggestion is one candidate for an original name.
type Suggestion struct {
	Match      string  `json:"match"`
	Confidence float64 `json:"confidence"`
	Reason     Reason  `json:"reason"`
}

// Result is the outcome for one original region name. Matched is empty when
// no candidate was acceptable.
type Result struct {
	Original    string       `json:"original"`
	Matched     string       `json:"matched,omitempty"`
	Confidence  float64      `json:"confidence"`
	Suggestions []Suggestion `json:"suggestions"`
}

// OK reports whether a candidate was accepted.
func (r Result) OK() bool { return r.Matched != "" }

// Options tunes the matcher.
type Options struct {
	// Threshold is the similarity a fuzzy top suggestion must exceed.
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	// MinSimilarity drops weaker candidates from suggestions entirely.
	MinSimilarity  float64           `mapstructure:"min_similarity" yaml:"min_similarity"`
	MaxSuggestions int               `mapstructure:"max_suggestions" yaml:"max_suggestions"`
	MaxCost        int               `mapstructure:"max_cost" yaml:"max_cost"`
	Workers        int               `mapstructure:"workers" yaml:"workers"`
	Aliases        map[string]string `mapstructure:"aliases" yaml:"aliases,omitempty"`
}

// DefaultOptions returns the matcher defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.6,
		MinSimilarity:  0.4,
		MaxSuggestions: 3,
		MaxCost:        100,
		Workers:        4,
	}
}

type candidate struct {
	id   string
	norm string
}

// Matcher matches names against a fixed candidate set. It is safe for
// concurrent use.
type Matcher struct {
	opt        Options
	params     *levenshtein.Params
	candidates []candidate
	aliases    map[string]string
}

// New prepares a matcher. Candidate order is the tie-break order.
func New(candidates []string, opt Options) *Matcher {
	def := DefaultOptions()
	if opt.MaxSuggestions <= 0 {
		opt.MaxSuggestions = def.MaxSuggestions
	}
	if opt.Workers <= 0 {
		opt.Workers = def.Workers
	}
	m := &Matcher{
		opt:        opt,
		params:     params(opt.MaxCost),
		candidates: make([]candidate, 0, len(candidates)),
		aliases:    make(map[string]string, len(opt.Aliases)),
	}
	for _, c := range candidates {
		m.candidates = append(m.candidates, candidate{id: c, norm: Normalize(c)})
	}
	for alias, target := range opt.Aliases {
		if id, ok := m.lookup(target); ok {
			m.aliases[Normalize(alias)] = id
		} else {
			zap.L().Debug("match: alias target not among candidates",
				zap.String("alias", alias),
				zap.String("target", target),
			)
		}
	}
	return m
}

func (m *Matcher) lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range m.candidates {
		if strings.EqualFold(c.id, name) {
			return c.id, true
		}
	}
	return "", false
}

// Match resolves one original name: exact (case-insensitive) first, then
// aliases, then fuzzy scoring.
func (m *Matcher) Match(original string) Result {
	res := Result{Original: original, Suggestions: []Suggestion{}}
	if strings.TrimSpace(original) == "" {
		return res
	}
	if id, ok := m.lookup(original); ok {
		res.Matched = id
		res.Confidence = 1
		res.Suggestions = []Suggestion{{Match: id, Confidence: 1, Reason: ReasonExact}}
		return res
	}
	n := Normalize(original)
	if id, ok := m.aliases[n]; ok {
		res.Matched = id
		res.Confidence = AliasConfidence
		res.Suggestions = []Suggestion{{Match: id, Confidence: AliasConfidence, Reason: ReasonAlias}}
		return res
	}

	scored := make([]Suggestion, 0, len(m.candidates))
	for _, c := range m.candidates {
		s := similarityNormalized(n, c.norm, m.params)
		if s < m.opt.MinSimilarity || s <= 0 {
			continue
		}
		scored = append(scored, Suggestion{Match: c.id, Confidence: s, Reason: ReasonFuzzy})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	if len(scored) > m.opt.MaxSuggestions {
		scored = scored[:m.opt.MaxSuggestions]
	}
	res.Suggestions = scored
	if len(scored) > 0 {
		res.Confidence = scored[0].Confidence
		if scored[0].Confidence > m.opt.Threshold {
			res.Matched = scored[0].Match
		}
	}
	return res
}

// MatchAll matches every original on a bounded worker pool. Results keep the
// input order.
func (m *Matcher) MatchAll(ctx context.Context, originals []string) ([]Result, error) {
	out := make([]Result, len(originals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opt.Workers)
	for i, name := range originals {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = m.Match(name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "match: match all")
	}

	var unmatched int
	for _, r := range out {
		if !r.OK() {
			unmatched++
		}
	}
	zap.L().Debug("match: complete",
		zap.Int("originals", len(originals)),
		zap.Int("candidates", len(m.candidates)),
		zap.Int("unmatched", unmatched),
	)
	return out, nil
}

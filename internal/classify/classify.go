package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidBucketCount is a caller contract violation (buckets < 1).
	ErrInvalidBucketCount = eris.New("bucket count must be at least 1")
	// ErrInvalidBreaks rejects manual breaks that are too few or decreasing.
	ErrInvalidBreaks = eris.New("manual breaks must be non-decreasing with at least 2 entries")
	// ErrUnknownMethod is returned by ParseMethod.
	ErrUnknownMethod = eris.New("unknown classification method")
)

// MethodType identifies a classification algorithm.
type MethodType string

const (
	EqualInterval MethodType = "equalInterval"
	Quantile      MethodType = "quantile"
	Natural       MethodType = "natural"
	Manual        MethodType = "manual"
)

// Method is a named classification method.
type Method struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type MethodType `json:"type"`
}

var methods = []Method{
	{ID: "equalInterval", Name: "Equal Intervals", Type: EqualInterval},
	{ID: "quantile", Name: "Quantiles", Type: Quantile},
	{ID: "natural", Name: "Natural Breaks (Jenks)", Type: Natural},
	{ID: "manual", Name: "Manual", Type: Manual},
}

// Methods lists the available methods in display order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// ParseMethod looks a method up by id, case-insensitively.
func ParseMethod(id string) (Method, error) {
	for _, m := range methods {
		if strings.EqualFold(m.ID, strings.TrimSpace(id)) {
			return m, nil
		}
	}
	return Method{}, eris.Wrapf(ErrUnknownMethod, "%q", id)
}

// Classification is the result of binning a value set.
type Classification struct {
	Method  Method    `json:"method"`
	Buckets int       `json:"buckets"`
	Breaks  []float64 `json:"breaks"`
	Labels  []string  `json:"labels"`
}

// Classify bins values into buckets. NaN and infinite values are dropped
// first. Manual breaks are only read for the manual method, and their length
// decides the bucket count. An empty value set yields all-zero breaks.
func Classify(values []float64, method Method, buckets int, manual []float64) (*Classification, error) {
	if method.Type == Manual {
		if len(manual) < 2 {
			return nil, ErrInvalidBreaks
		}
		for i := 1; i < len(manual); i++ {
			if !(manual[i] >= manual[i-1]) {
				return nil, eris.Wrapf(ErrInvalidBreaks, "break %d (%g) is below break %d (%g)", i, manual[i], i-1, manual[i-1])
			}
		}
		breaks := make([]float64, len(manual))
		copy(breaks, manual)
		return newClassification(method, breaks), nil
	}
	if buckets < 1 {
		return nil, eris.Wrapf(ErrInvalidBucketCount, "got %d", buckets)
	}

	sorted := clean(values)
	var breaks []float64
	switch {
	case len(sorted) == 0:
		breaks = make([]float64, buckets+1)
	case method.Type == Quantile:
		breaks = quantileBreaks(sorted, buckets)
	case method.Type == Natural:
		breaks = naturalBreaks(sorted, buckets)
	default:
		breaks = equalBreaks(sorted, buckets)
	}
	return newClassification(method, breaks), nil
}

func newClassification(method Method, breaks []float64) *Classification {
	b := len(breaks) - 1
	labels := make([]string, b)
	for i := 0; i < b; i++ {
		labels[i] = Label(breaks[i], breaks[i+1])
	}
	return &Classification{Method: method, Buckets: b, Breaks: breaks, Labels: labels}
}

// Label formats a bucket range.
func Label(lo, hi float64) string {
	return fmt.Sprintf("%.1f - %.1f", lo, hi)
}

// Bucket returns the bucket holding v: the first i with v <= breaks[i+1],
// clamped into [0, Buckets-1].
func (c *Classification) Bucket(v float64) int {
	if c == nil || c.Buckets < 1 {
		return 0
	}
	for i := 0; i < c.Buckets; i++ {
		if v <= c.Breaks[i+1] {
			return i
		}
	}
	return c.Buckets - 1
}

func clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func equalBreaks(sorted []float64, buckets int) []float64 {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	step := (hi - lo) / float64(buckets)
	breaks := make([]float64, buckets+1)
	for i := range breaks {
		breaks[i] = lo + float64(i)*step
	}
	breaks[buckets] = hi
	return breaks
}

func quantileBreaks(sorted []float64, buckets int) []float64 {
	breaks := make([]float64, buckets+1)
	for i := range breaks {
		breaks[i] = quantile(sorted, float64(i)/float64(buckets))
	}
	return breaks
}

// quantile interpolates linearly between order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

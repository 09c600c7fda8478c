package binding

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/KaramelBytes/choropleth-cli/internal/regions"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	ErrColumnNotFound = eris.New("column not found")
	ErrInvalidTable   = eris.New("table has no data rows")
)

// Columns appended by Augment.
const (
	ColMatchedRegion   = "matched_region"
	ColMatchConfidence = "match_confidence"
)

// Input is everything a binding depends on. Changing any field requires a
// full recompute.
type Input struct {
	Table        *table.Table
	Candidates   []string
	RegionColumn string
	ValueColumn  string
	Scheme       colorscale.Scheme
	Method       classify.Method
	Buckets      int
	ManualBreaks []float64
	Match        match.Options
}

// RowBinding is the outcome for one table row.
type RowBinding struct {
	Row             int     `json:"row"`
	Region          string  `json:"region"`
	MatchedRegionID string  `json:"matchedRegionId,omitempty"`
	Confidence      float64 `json:"confidence"`
	Value           string  `json:"value"`
	Color           string  `json:"color"`
}

// Result is one complete binding.
type Result struct {
	Generation     uint64                   `json:"generation"`
	Matches        []match.Result           `json:"matches"`
	Classification *classify.Classification `json:"classification"`
	Scale          []string                 `json:"scale"`
	Legend         []colorscale.LegendEntry `json:"legend"`
	Gradient       []colorscale.Stop        `json:"gradient"`
	Rows           []RowBinding             `json:"rows"`
	Colors         map[string]string        `json:"colors"`
	Warnings       []string                 `json:"warnings"`
}

// ColorFor returns the fill for a region id.
func (r *Result) ColorFor(regionID string) (string, bool) {
	c, ok := r.Colors[regionID]
	return c, ok
}

// Augment returns a copy of t with matched_region and match_confidence
// columns appended. t must be the table the result was bound from.
func (r *Result) Augment(t *table.Table) *table.Table {
	values := make([][]string, t.Len())
	for i := range values {
		values[i] = []string{"", "0.00"}
		if i < len(r.Rows) {
			values[i] = []string{r.Rows[i].MatchedRegionID, fmt.Sprintf("%.2f", r.Rows[i].Confidence)}
		}
	}
	return t.WithColumns([]string{ColMatchedRegion, ColMatchConfidence}, values)
}

// Bind matches region names, classifies the value column and colors every
// row. Row-level problems become warnings; only a missing table, a missing
// column or an invalid classification request fail the call.
func Bind(ctx context.Context, in Input) (*Result, error) {
	if in.Table == nil || in.Table.Len() == 0 {
		return nil, ErrInvalidTable
	}
	for _, col := range []string{in.RegionColumn, in.ValueColumn} {
		if !in.Table.HasColumn(col) {
			return nil, eris.Wrapf(ErrColumnNotFound, "%q (available: %v)", col, in.Table.Headers())
		}
	}

	res := &Result{Colors: make(map[string]string), Warnings: []string{}}
	if len(in.Candidates) == 0 {
		res.Warnings = append(res.Warnings, regions.ErrNoRegions.Error())
	}

	names := in.Table.Distinct(in.RegionColumn)
	matches, err := match.New(in.Candidates, in.Match).MatchAll(ctx, names)
	if err != nil {
		return nil, eris.Wrap(err, "binding: match regions")
	}
	res.Matches = matches
	byName := make(map[string]match.Result, len(matches))
	var unmatched int
	for _, m := range matches {
		byName[m.Original] = m
		if !m.OK() {
			unmatched++
		}
	}
	if unmatched > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d regions could not be matched", unmatched))
	}

	values := in.Table.Numbers(in.ValueColumn)
	cls, err := classify.Classify(values, in.Method, in.Buckets, in.ManualBreaks)
	if err != nil {
		return nil, eris.Wrap(err, "binding: classify")
	}
	res.Classification = cls
	palette := colorscale.NewPalette(in.Scheme, cls, values)
	res.Scale = palette.Scale()
	res.Legend = colorscale.Legend(cls, res.Scale)
	res.Gradient = colorscale.GradientStops(in.Scheme)

	var nonNumeric int
	res.Rows = make([]RowBinding, 0, in.Table.Len())
	for i, row := range in.Table.Rows() {
		region, _ := row.Get(in.RegionColumn)
		value, _ := row.Get(in.ValueColumn)
		if _, ok := value.Float(); !ok {
			nonNumeric++
		}
		rb := RowBinding{Row: i, Region: region.Raw, Value: value.Raw, Color: palette.Color(value)}
		if m, ok := byName[region.Raw]; ok {
			rb.Confidence = m.Confidence
			if m.OK() {
				rb.MatchedRegionID = m.Matched
				res.Colors[m.Matched] = rb.Color
			}
		}
		res.Rows = append(res.Rows, rb)
	}
	if nonNumeric > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d rows have a non-numeric %s value", nonNumeric, in.ValueColumn))
	}

	zap.L().Debug("binding: complete",
		zap.Int("rows", len(res.Rows)),
		zap.Int("regions", len(names)),
		zap.Int("unmatched", unmatched),
		zap.Int("colored", len(res.Colors)),
	)
	return res, nil
}

package colorscale

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
)

// Palette maps values to colors for one scheme and classification. Build it
// once per binding and reuse it for every row.
type Palette struct {
	scheme Scheme
	cls    *classify.Classification
	scale  []string
	max    float64
	grad   gradient
}

// NewPalette prepares lookups. Without a classification, values are scaled
// against the largest of fallback.
func NewPalette(s Scheme, cls *classify.Classification, fallback []float64) *Palette {
	p := &Palette{scheme: s, cls: cls}
	if cls != nil {
		p.scale = Scale(s, cls.Buckets)
		return p
	}
	for i, v := range fallback {
		if i == 0 || v > p.max {
			p.max = v
		}
	}
	p.grad = newGradient(s)
	return p
}

// Scale returns the bucket colors, or nil without a classification.
func (p *Palette) Scale() []string { return p.scale }

// Color returns the fill for a cell value.
func (p *Palette) Color(v table.Value) string {
	f, ok := v.Float()
	if !ok {
		return Neutral
	}
	return p.ColorFloat(f)
}

// ColorFloat returns the fill for a numeric value.
func (p *Palette) ColorFloat(f float64) string {
	if p.cls == nil {
		if p.max <= 0 {
			return Neutral
		}
		return p.grad.at(f / p.max).Hex()
	}
	if len(p.scale) == 0 {
		return Neutral
	}
	// Categorical schemes can be shorter than the bucket count; colors repeat.
	return p.scale[p.cls.Bucket(f)%len(p.scale)]
}

// ColorForValue is the one-shot form of NewPalette(...).Color(v).
func ColorForValue(v table.Value, cls *classify.Classification, s Scheme, fallback []float64) string {
	return NewPalette(s, cls, fallback).Color(v)
}

// LegendEntry is one bucket of a legend.
type LegendEntry struct {
	Label string  `json:"label"`
	Color string  `json:"color"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Legend pairs each bucket of cls with its color from scale.
func Legend(cls *classify.Classification, scale []string) []LegendEntry {
	if cls == nil {
		return nil
	}
	out := make([]LegendEntry, 0, cls.Buckets)
	for i := 0; i < cls.Buckets; i++ {
		color := Neutral
		if len(scale) > 0 {
			color = scale[i%len(scale)]
		}
		out = append(out, LegendEntry{
			Label: cls.Labels[i],
			Color: color,
			Lower: cls.Breaks[i],
			Upper: cls.Breaks[i+1],
		})
	}
	return out
}

// Stop is one color stop of a smooth legend gradient, Offset in percent.
type Stop struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
}

// GradientStops samples the scheme for a smooth legend: 11 stops for linear
// schemes, 21 otherwise.
func GradientStops(s Scheme) []Stop {
	n := 10
	if s.nonLinear() {
		n = 20
	}
	g := newGradient(s)
	out := make([]Stop, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, Stop{
			Color:  g.at(float64(i) / float64(n)).Hex(),
			Offset: float64(i) * 100 / float64(n),
		})
	}
	return out
}

// CSS renders stops as a left-to-right linear-gradient.
func CSS(stops []Stop) string {
	parts := make([]string, len(stops))
	for i, st := range stops {
		parts[i] = fmt.Sprintf("%s %g%%", st.Color, st.Offset)
	}
	return "linear-gradient(to right, " + strings.Join(parts, ", ") + ")"
}

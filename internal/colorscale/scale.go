package colorscale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Neutral fills regions without a numeric value.
const Neutral = "#e5e5e5"

// gradient is a scheme's anchors ready for interpolation in CIE LCh.
type gradient struct {
	anchors []colorful.Color
	correct bool
	l0, l1  float64
}

func newGradient(s Scheme) gradient {
	g := gradient{correct: s.nonLinear()}
	for _, hex := range s.Colors {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		g.anchors = append(g.anchors, c)
	}
	if g.correct && len(g.anchors) > 1 {
		g.l0 = lightness(g.raw(0))
		g.l1 = lightness(g.raw(1))
	}
	return g
}

func lightness(c colorful.Color) float64 {
	_, _, l := c.Hcl()
	return l
}

// raw blends the two anchors around t without lightness correction.
func (g gradient) raw(t float64) colorful.Color {
	switch len(g.anchors) {
	case 0:
		c, _ := colorful.Hex(Neutral)
		return c
	case 1:
		return g.anchors[0]
	}
	t = clamp01(t)
	segs := float64(len(g.anchors) - 1)
	pos := t * segs
	i := int(math.Floor(pos))
	if i >= len(g.anchors)-1 {
		return g.anchors[len(g.anchors)-1]
	}
	if pos == float64(i) {
		return g.anchors[i]
	}
	return g.anchors[i].BlendHcl(g.anchors[i+1], pos-float64(i)).Clamped()
}

// at returns the color at t in [0,1]. With correction on, t is remapped so
// lightness moves linearly from the first to the last anchor.
func (g gradient) at(t float64) colorful.Color {
	t = clamp01(t)
	if !g.correct || len(g.anchors) < 2 || g.l0 == g.l1 {
		return g.raw(t)
	}
	want := g.l0 + t*(g.l1-g.l0)
	lo, hi := 0.0, 1.0
	mid := t
	for i := 0; i < 20; i++ {
		l := lightness(g.raw(mid))
		if math.Abs(l-want) < 1e-3 {
			break
		}
		if (l < want) == (g.l0 < g.l1) {
			lo = mid
		} else {
			hi = mid
		}
		mid = (lo + hi) / 2
	}
	return g.raw(mid)
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Scale returns n colors for a scheme. Categorical schemes return their first
// n anchors verbatim, so the result may be shorter than n. Other schemes
// return exactly n colors evenly spaced along the LCh gradient.
func Scale(s Scheme, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if s.Type == Categorical {
		if n > len(s.Colors) {
			n = len(s.Colors)
		}
		out := make([]string, 0, n)
		for _, hex := range s.Colors[:n] {
			out = append(out, canonical(hex))
		}
		return out
	}
	g := newGradient(s)
	out := make([]string, n)
	if n == 1 {
		out[0] = g.at(0.5).Hex()
		return out
	}
	for i := range out {
		out[i] = g.at(float64(i) / float64(n-1)).Hex()
	}
	return out
}

// At returns the gradient color at position t in [0,1].
func At(s Scheme, t float64) string {
	return newGradient(s).at(t).Hex()
}

func canonical(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Neutral
	}
	return c.Hex()
}

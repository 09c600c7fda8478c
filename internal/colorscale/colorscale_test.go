package colorscale

import (
	"regexp"
	"strings"
	"testing"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func preset(t *testing.T, id string) Scheme {
	t.Helper()
	s, err := Lookup(id)
	require.NoError(t, err)
	return s
}

func TestPresets(t *testing.T) {
	all := Presets()
	require.Len(t, all, 12)
	counts := map[SchemeType]int{}
	for _, s := range all {
		counts[s.Type]++
		assert.True(t, s.AccessibilityCompliant, s.ID)
	}
	assert.Equal(t, 6, counts[Sequential])
	assert.Equal(t, 4, counts[Diverging])
	assert.Equal(t, 2, counts[Categorical])

	_, err := Lookup("viridis")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestScaleEndpointsAndLength(t *testing.T) {
	for _, s := range Presets() {
		if s.Type == Categorical {
			continue
		}
		t.Run(s.ID, func(t *testing.T) {
			for n := 2; n <= 9; n++ {
				out := Scale(s, n)
				require.Len(t, out, n)
				for _, c := range out {
					assert.Regexp(t, hexColor, c)
				}
				assert.Equal(t, s.Colors[0], out[0])
				assert.Equal(t, s.Colors[len(s.Colors)-1], out[n-1])
			}
		})
	}
}

func TestScaleIsDeterministic(t *testing.T) {
	s := preset(t, "rdylgn")
	assert.Equal(t, Scale(s, 7), Scale(s, 7))
	s.Interpolation = Cubic
	assert.Equal(t, Scale(s, 7), Scale(s, 7))
}

func TestScaleIsNotRGBLerp(t *testing.T) {
	s := preset(t, "rdbu")
	mid := Scale(s, 3)[1]
	assert.Equal(t, "#f7f7f7", mid)

	two := Scheme{ID: "x", Type: Sequential, Colors: []string{"#ff0000", "#0000ff"}}
	// Plain RGB averaging would give #800080.
	assert.NotEqual(t, "#800080", Scale(two, 3)[1])
}

func TestCategoricalScale(t *testing.T) {
	s := preset(t, "set1")
	assert.Equal(t, []string{"#e41a1c", "#377eb8", "#4daf4a"}, Scale(s, 3))
	assert.Len(t, Scale(s, 12), 8)
	assert.Empty(t, Scale(s, 0))
}

func TestColorForValueNeutral(t *testing.T) {
	s := preset(t, "bucharest")
	assert.Equal(t, Neutral, ColorForValue(table.ParseValue("n/a"), nil, s, []float64{1, 2}))
	assert.Equal(t, Neutral, ColorForValue(table.ParseValue(""), nil, s, []float64{1, 2}))
	assert.Equal(t, Neutral, ColorForValue(table.ParseValue("5"), nil, s, []float64{0, -3}))
	assert.Equal(t, Neutral, ColorForValue(table.ParseValue("5"), nil, s, nil))
}

func TestColorForValueWithoutClassification(t *testing.T) {
	s := preset(t, "bucharest")
	fallback := []float64{10, 40, 20}
	assert.Equal(t, s.Colors[1], ColorForValue(table.ParseValue("40"), nil, s, fallback))
	assert.Equal(t, s.Colors[0], ColorForValue(table.ParseValue("0"), nil, s, fallback))
	assert.Equal(t, At(s, 0.5), ColorForValue(table.ParseValue("20"), nil, s, fallback))
}

func TestBucketCoverage(t *testing.T) {
	m, err := classify.ParseMethod("equalInterval")
	require.NoError(t, err)
	values := []float64{3, 17, 4.5, 88, 23, 61, 40, 12}
	for _, id := range []string{"buenos-aries", "rdbu", "set2"} {
		s := preset(t, id)
		for b := 1; b <= 6; b++ {
			cls, err := classify.Classify(values, m, b, nil)
			require.NoError(t, err)
			scale := Scale(s, b)
			p := NewPalette(s, cls, values)
			for v := 3.0; v <= 88; v += 0.5 {
				assert.Contains(t, scale, p.ColorFloat(v), "%s b=%d v=%v", id, b, v)
			}
		}
	}
}

func TestBucketColorsFollowClassification(t *testing.T) {
	m, _ := classify.ParseMethod("equalInterval")
	cls, err := classify.Classify([]float64{0, 10, 20, 30, 40}, m, 4, nil)
	require.NoError(t, err)
	s := preset(t, "bellagio")
	scale := Scale(s, 4)
	assert.Equal(t, scale[0], ColorForValue(table.ParseValue("0"), cls, s, nil))
	assert.Equal(t, scale[0], ColorForValue(table.ParseValue("10"), cls, s, nil))
	assert.Equal(t, scale[1], ColorForValue(table.ParseValue("11"), cls, s, nil))
	assert.Equal(t, scale[3], ColorForValue(table.ParseValue("1000"), cls, s, nil))
	assert.Equal(t, scale[0], ColorForValue(table.ParseValue("-1000"), cls, s, nil))
}

func TestCategoricalReuseWhenShort(t *testing.T) {
	m, _ := classify.ParseMethod("equalInterval")
	cls, err := classify.Classify([]float64{0, 100}, m, 10, nil)
	require.NoError(t, err)
	s := preset(t, "set1")
	p := NewPalette(s, cls, nil)
	assert.Equal(t, s.Colors[0], p.ColorFloat(85))
	assert.Equal(t, s.Colors[1], p.ColorFloat(95))
}

func TestLegendAndGradient(t *testing.T) {
	m, _ := classify.ParseMethod("equalInterval")
	cls, err := classify.Classify([]float64{0, 10, 20, 30, 40}, m, 4, nil)
	require.NoError(t, err)
	s := preset(t, "helsinki")
	leg := Legend(cls, Scale(s, 4))
	require.Len(t, leg, 4)
	assert.Equal(t, "10.0 - 20.0", leg[1].Label)
	assert.Equal(t, 10.0, leg[1].Lower)
	assert.Equal(t, 20.0, leg[1].Upper)

	stops := GradientStops(s)
	require.Len(t, stops, 11)
	assert.Equal(t, 0.0, stops[0].Offset)
	assert.Equal(t, 100.0, stops[10].Offset)
	assert.Equal(t, s.Colors[0], stops[0].Color)

	s.Interpolation = Basis
	assert.Len(t, GradientStops(s), 21)
	css := CSS(GradientStops(preset(t, "paris")))
	assert.True(t, strings.HasPrefix(css, "linear-gradient(to right, #fff5eb 0%"))
	assert.True(t, strings.HasSuffix(css, "#8b2500 100%)"))
}

func TestValidateAndRegistry(t *testing.T) {
	v, err := Validate(Scheme{ID: "brand", Colors: []string{"#FFF", " #003366 "}})
	require.NoError(t, err)
	assert.Equal(t, Custom, v.Type)
	assert.Equal(t, []string{"#ffffff", "#003366"}, v.Colors)

	_, err = Validate(Scheme{ID: "one", Colors: []string{"#fff"}})
	assert.ErrorIs(t, err, ErrInvalidScheme)
	_, err = Validate(Scheme{ID: "bad", Colors: []string{"#fff", "blue"}})
	assert.ErrorIs(t, err, ErrInvalidScheme)
	_, err = Validate(Scheme{ID: "bad", Colors: []string{"#fff", "#000"}, Interpolation: "spline"})
	assert.ErrorIs(t, err, ErrInvalidScheme)

	r, err := NewRegistry([]Scheme{{ID: "brand", Colors: []string{"#ffffff", "#003366"}}})
	require.NoError(t, err)
	got, err := r.Lookup("brand")
	require.NoError(t, err)
	assert.Equal(t, "brand", got.Name)
	all := r.All()
	assert.Len(t, all, 13)
	assert.Equal(t, "buenos-aries", all[0].ID)
	assert.Equal(t, "brand", all[12].ID)
}

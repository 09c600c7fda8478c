package colorscale

import (
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
)

var (
	ErrUnknownScheme = eris.New("unknown color scheme")
	ErrInvalidScheme = eris.New("invalid color scheme")
)

// SchemeType groups schemes by how their anchors are used.
type SchemeType string

const (
	Sequential  SchemeType = "sequential"
	Diverging   SchemeType = "diverging"
	Categorical SchemeType = "categorical"
	Custom      SchemeType = "custom"
)

// Interpolation selects the gradient flavour. Anything but linear enables
// lightness correction.
type Interpolation string

const (
	Linear Interpolation = "linear"
	Cubic  Interpolation = "cubic"
	Basis  Interpolation = "basis"
)

// Scheme is a named list of anchor colors.
type Scheme struct {
	ID                     string        `json:"id" yaml:"id" mapstructure:"id"`
	Name                   string        `json:"name" yaml:"name" mapstructure:"name"`
	Type                   SchemeType    `json:"type" yaml:"type" mapstructure:"type"`
	Colors                 []string      `json:"colors" yaml:"colors" mapstructure:"colors"`
	AccessibilityCompliant bool          `json:"accessibilityCompliant" yaml:"accessibility_compliant" mapstructure:"accessibility_compliant"`
	Interpolation          Interpolation `json:"interpolation,omitempty" yaml:"interpolation,omitempty" mapstructure:"interpolation"`
}

func (s Scheme) nonLinear() bool {
	return s.Interpolation != "" && s.Interpolation != Linear
}

var presets = []Scheme{
	{ID: "buenos-aries", Name: "Buenos-Aries", Type: Sequential, Colors: []string{"#f7fbff", "#08519c"}, AccessibilityCompliant: true},
	{ID: "bucharest", Name: "Bucharest", Type: Sequential, Colors: []string{"#fff5f0", "#a50f15"}, AccessibilityCompliant: true},
	{ID: "bellagio", Name: "Bellagio", Type: Sequential, Colors: []string{"#f7fcf5", "#00441b"}, AccessibilityCompliant: true},
	{ID: "helsinki", Name: "Helsinki", Type: Sequential, Colors: []string{"#fcfbfd", "#3f007d"}, AccessibilityCompliant: true},
	{ID: "dhaka", Name: "Dhaka", Type: Sequential, Colors: []string{"#f7fbff", "#0c4d9c"}, AccessibilityCompliant: true},
	{ID: "paris", Name: "Paris", Type: Sequential, Colors: []string{"#fff5eb", "#8b2500"}, AccessibilityCompliant: true},

	{ID: "rdbu", Name: "Red-Blue", Type: Diverging, Colors: []string{"#b2182b", "#f7f7f7", "#2166ac"}, AccessibilityCompliant: true},
	{ID: "rdylgn", Name: "Red-Yellow-Green", Type: Diverging, Colors: []string{"#d73027", "#ffffbf", "#1a9850"}, AccessibilityCompliant: true},
	{ID: "brbg", Name: "Brown-Blue-Green", Type: Diverging, Colors: []string{"#8c510a", "#f5f5f5", "#01665e"}, AccessibilityCompliant: true},
	{ID: "piyg", Name: "Pink-Yellow-Green", Type: Diverging, Colors: []string{"#e9a3c9", "#f7f7f7", "#a1d76a"}, AccessibilityCompliant: true},

	{ID: "set1", Name: "Set 1", Type: Categorical, Colors: []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#ffff33", "#a65628", "#f781bf"}, AccessibilityCompliant: true},
	{ID: "set2", Name: "Set 2", Type: Categorical, Colors: []string{"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3"}, AccessibilityCompliant: true},
}

// Presets returns the built-in schemes grouped sequential, diverging, categorical.
func Presets() []Scheme {
	out := make([]Scheme, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by id.
func Lookup(id string) (Scheme, error) {
	for _, s := range presets {
		if s.ID == id {
			return s, nil
		}
	}
	return Scheme{}, eris.Wrapf(ErrUnknownScheme, "%q", id)
}

// Validate checks a user-supplied scheme: an id, a known type and
// interpolation, and at least two parseable hex anchors. Anchors are
// rewritten in canonical lowercase form.
func Validate(s Scheme) (Scheme, error) {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return s, eris.Wrap(ErrInvalidScheme, "missing id")
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	switch s.Type {
	case "":
		s.Type = Custom
	case Sequential, Diverging, Categorical, Custom:
	default:
		return s, eris.Wrapf(ErrInvalidScheme, "%s: unknown type %q", s.ID, s.Type)
	}
	switch s.Interpolation {
	case "", Linear, Cubic, Basis:
	default:
		return s, eris.Wrapf(ErrInvalidScheme, "%s: unknown interpolation %q", s.ID, s.Interpolation)
	}
	if len(s.Colors) < 2 {
		return s, eris.Wrapf(ErrInvalidScheme, "%s: need at least 2 colors, got %d", s.ID, len(s.Colors))
	}
	colors := make([]string, len(s.Colors))
	for i, c := range s.Colors {
		parsed, err := colorful.Hex(strings.TrimSpace(c))
		if err != nil {
			return s, eris.Wrapf(ErrInvalidScheme, "%s: color %d %q is not a hex color", s.ID, i, c)
		}
		colors[i] = parsed.Hex()
	}
	s.Colors = colors
	return s, nil
}

// Registry holds the presets plus validated custom schemes. Custom schemes
// shadow presets with the same id.
type Registry struct {
	byID map[string]Scheme
}

// NewRegistry validates and registers custom schemes on top of the presets.
func NewRegistry(custom []Scheme) (*Registry, error) {
	r := &Registry{byID: make(map[string]Scheme, len(presets)+len(custom))}
	for _, s := range presets {
		r.byID[s.ID] = s
	}
	for _, s := range custom {
		v, err := Validate(s)
		if err != nil {
			return nil, err
		}
		r.byID[v.ID] = v
	}
	return r, nil
}

// Lookup finds a scheme by id.
func (r *Registry) Lookup(id string) (Scheme, error) {
	if s, ok := r.byID[id]; ok {
		return s, nil
	}
	return Scheme{}, eris.Wrapf(ErrUnknownScheme, "%q", id)
}

// All returns presets in their fixed order followed by custom schemes by id.
func (r *Registry) All() []Scheme {
	out := make([]Scheme, 0, len(r.byID))
	seen := make(map[string]bool, len(presets))
	for _, p := range presets {
		out = append(out, r.byID[p.ID])
		seen[p.ID] = true
	}
	var rest []string
	for id := range r.byID {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, r.byID[id])
	}
	return out
}

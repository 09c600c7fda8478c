package table

import (
	"fmt"
	"math"
	"strings"
)

// Column kinds reported by Summarize.
const (
	KindNumeric = "numeric"
	KindText    = "text"
	KindEmpty   = "empty"
)

// ColumnSummary captures inferred type and range per column.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	NonNull int     `json:"nonNull"`
	Missing int     `json:"missing"`
	Unique  int     `json:"unique"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
}

// Summarize infers a kind per header. A column is numeric when numeric cells
// are at least as common as text cells.
func (t *Table) Summarize() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.headers))
	for i, name := range t.headers {
		s := ColumnSummary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
		var numCnt, txtCnt int
		uniq := make(map[string]struct{})
		for _, r := range t.rows {
			c := r.cells[i]
			if c.Empty() {
				s.Missing++
				continue
			}
			s.NonNull++
			uniq[c.Raw] = struct{}{}
			if f, ok := c.Float(); ok {
				numCnt++
				s.Min = math.Min(s.Min, f)
				s.Max = math.Max(s.Max, f)
				continue
			}
			txtCnt++
		}
		s.Unique = len(uniq)
		switch {
		case numCnt > 0 && numCnt >= txtCnt:
			s.Kind = KindNumeric
		case txtCnt > 0:
			s.Kind = KindText
		default:
			s.Kind = KindEmpty
		}
		if s.Kind != KindNumeric {
			s.Min, s.Max = 0, 0
		}
		out = append(out, s)
	}
	return out
}

// GuessColumns picks a region column (first text column) and a value column
// (first numeric column). Either may be empty.
func (t *Table) GuessColumns() (region, value string) {
	for _, s := range t.Summarize() {
		switch {
		case region == "" && s.Kind == KindText:
			region = s.Name
		case value == "" && s.Kind == KindNumeric:
			value = s.Name
		}
	}
	return region, value
}

// Markdown renders a compact schema listing for terminal output.
func (t *Table) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\nColumns: %d\n\n", t.Len(), len(t.headers)))
	b.WriteString("[SCHEMA]\n")
	for _, c := range t.Summarize() {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := c.Name
		if name == "" {
			name = "(unnamed)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf(", min %.4g, max %.4g", c.Min, c.Max))
		case KindText:
			b.WriteString(fmt.Sprintf(", unique=%d", c.Unique))
		}
		b.WriteString("\n")
	}
	return b.String()
}

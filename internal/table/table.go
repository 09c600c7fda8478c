package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Value is a single parsed cell. Raw always holds the trimmed source text so a
// table can be written back without reformatting numbers.
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
}

var decimalPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseValue coerces a syntactically decimal cell to a number and keeps
// everything else as trimmed text.
func ParseValue(s string) Value {
	raw := strings.TrimSpace(s)
	if decimalPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) {
			return Value{Raw: raw, Num: f, Numeric: true}
		}
	}
	return Value{Raw: raw}
}

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if !v.Numeric || math.IsNaN(v.Num) {
		return 0, false
	}
	return v.Num, true
}

// Empty reports whether the cell is missing.
func (v Value) Empty() bool { return v.Raw == "" }

func (v Value) String() string { return v.Raw }

// Row is one data row. Cells are positional; Get resolves a column name
// through the table's header index, where a duplicated header name resolves
// to its last occurrence.
type Row struct {
	cells []Value
	index map[string]int
}

// Get returns the cell stored under the column name.
func (r Row) Get(col string) (Value, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return Value{}, false
	}
	return r.cells[i], true
}

// Cells returns a copy of the positional cells.
func (r Row) Cells() []Value {
	out := make([]Value, len(r.cells))
	copy(out, r.cells)
	return out
}

// Map returns the row as a column name to value mapping.
func (r Row) Map() map[string]Value {
	m := make(map[string]Value, len(r.index))
	for name, i := range r.index {
		if i < len(r.cells) {
			m[name] = r.cells[i]
		}
	}
	return m
}

// Table is an immutable parsed dataset.
type Table struct {
	Name    string
	headers []string
	index   map[string]int
	rows    []Row
}

// New builds a table from headers and raw records. Short records are padded
// with empty cells; extra fields are dropped.
func New(name string, headers []string, records [][]string) *Table {
	t := &Table{Name: name}
	t.headers = make([]string, len(headers))
	t.index = make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		t.headers[i] = h
		t.index[h] = i
	}
	t.rows = make([]Row, 0, len(records))
	for _, rec := range records {
		cells := make([]Value, len(headers))
		for i := range headers {
			if i < len(rec) {
				cells[i] = ParseValue(rec[i])
			}
		}
		t.rows = append(t.rows, Row{cells: cells, index: t.index})
	}
	return t
}

// Headers returns the header names in source order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

// Rows returns the data rows.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether a header with the given name exists.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Column returns every row's value for col, in row order.
func (t *Table) Column(col string) ([]Value, bool) {
	if !t.HasColumn(col) {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i], _ = r.Get(col)
	}
	return out, true
}

// Numbers returns the numeric cells of col; text, empty and NaN cells are
// discarded.
func (t *Table) Numbers(col string) []float64 {
	vals, _ := t.Column(col)
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Distinct returns the distinct non-blank text values of col in first-seen order.
func (t *Table) Distinct(col string) []string {
	vals, _ := t.Column(col)
	seen := make(map[string]struct{}, len(vals))
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v.Raw) == "" {
			continue
		}
		if _, ok := seen[v.Raw]; ok {
			continue
		}
		seen[v.Raw] = struct{}{}
		out = append(out, v.Raw)
	}
	return out
}

// WithColumns returns a new table with extra columns appended. values is
// indexed by row, then by new column.
func (t *Table) WithColumns(names []string, values [][]string) *Table {
	headers := append(t.Headers(), names...)
	records := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rec := make([]string, 0, len(headers))
		for _, c := range r.cells {
			rec = append(rec, c.Raw)
		}
		if i < len(values) {
			rec = append(rec, values[i]...)
		}
		records[i] = rec
	}
	return New(t.Name, headers, records)
}

package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrFileTooLarge is returned before parsing when content exceeds Options.MaxBytes.
	ErrFileTooLarge = eris.New("file too large")
	// ErrWrongFileType is returned when no reader accepts the file extension.
	ErrWrongFileType = eris.New("unsupported file type")
	// ErrParse marks a malformed row. It is reported through ValidationResult.
	ErrParse = eris.New("parse error")
)

// Options controls loading of tabular uploads.
type Options struct {
	// MaxBytes rejects larger inputs; 0 means unlimited.
	MaxBytes int64
	// Delimiter for delimited text. If 0, ',' is used.
	Delimiter rune
	// SheetName selects an XLSX sheet by name.
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based position when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the upload defaults: 20 MiB, comma separated.
func DefaultOptions() Options {
	return Options{
		MaxBytes:   20 << 20,
		Delimiter:  ',',
		SheetIndex: 1,
	}
}

// ValidationResult summarizes structural problems of a parsed table.
// IsValid is true exactly when Errors is empty.
type ValidationResult struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	RowCount    int      `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
}

// Messages used by validation.
const (
	MsgNoRows        = "No data rows found"
	MsgFewColumns    = "Data should have at least 2 columns (region and value)"
	msgMissingFormat = "%d rows have missing values"
)

// Records is raw reader output before typing. Problems holds per-row parse
// failures that were skipped.
type Records struct {
	Rows     [][]string
	Problems []string
}

// Parse parses delimited text into a table. Malformed rows are skipped and
// reported as validation errors; only a size violation is returned as error.
func Parse(name string, content []byte, opt Options) (*Table, ValidationResult, error) {
	if opt.MaxBytes > 0 && int64(len(content)) > opt.MaxBytes {
		return nil, ValidationResult{}, eris.Wrapf(ErrFileTooLarge, "table: %s is %d bytes (limit %d)", name, len(content), opt.MaxBytes)
	}
	recs := readDelimited(content, opt.Delimiter)
	t, res := build(name, recs)
	return t, res, nil
}

func readDelimited(content []byte, delim rune) Records {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if delim == 0 {
		delim = ','
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1

	var out Records
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				out.Problems = append(out.Problems, fmt.Sprintf("line %d: %v", pe.StartLine, eris.Wrap(ErrParse, pe.Err.Error())))
				continue
			}
			out.Problems = append(out.Problems, eris.Wrap(err, "read table").Error())
			break
		}
		if blankRecord(rec) {
			continue
		}
		row := make([]string, len(rec))
		copy(row, rec)
		out.Rows = append(out.Rows, row)
	}
	return out
}

func blankRecord(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "")
}

// build turns header + data records into a table and validates it.
func build(name string, recs Records) (*Table, ValidationResult) {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	res.Errors = append(res.Errors, recs.Problems...)

	var headers []string
	var data [][]string
	if len(recs.Rows) > 0 {
		headers = recs.Rows[0]
		data = recs.Rows[1:]
	}
	t := New(name, headers, data)

	res.RowCount = t.Len()
	res.ColumnCount = len(t.headers)
	if res.RowCount == 0 {
		res.Errors = append(res.Errors, MsgNoRows)
	}
	if res.ColumnCount < 2 {
		res.Warnings = append(res.Warnings, MsgFewColumns)
	}

	seen := make(map[string]bool, len(t.headers))
	for _, h := range t.headers {
		if seen[h] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Duplicate column header %q; the last occurrence is used", h))
		}
		seen[h] = true
	}

	var long int
	for _, rec := range data {
		if len(rec) > len(headers) {
			long++
		}
	}
	if long > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d rows have more fields than headers; extra fields were dropped", long))
	}

	var missing int
	for _, r := range t.rows {
		for _, c := range r.cells {
			if c.Empty() {
				missing++
				break
			}
		}
	}
	if missing > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(msgMissingFormat, missing))
	}

	res.IsValid = len(res.Errors) == 0
	return t, res
}

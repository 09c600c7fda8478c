package table

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// WriteCSV serializes the table with its original header order and raw cell
// text, quoting fields where needed.
func WriteCSV(w io.Writer, t *Table, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.headers); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	rec := make([]string, len(t.headers))
	for i, r := range t.rows {
		for j := range rec {
			rec[j] = r.cells[j].Raw
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "table: write row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "table: flush")
}

// EncodeCSV is WriteCSV into a byte slice.
func EncodeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, ','); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package table

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read loads the selected sheet. Sheet selection prefers SheetName, then the
// 1-based SheetIndex, then the first sheet.
func (xlsxReader) Read(path string, opt Options) (Records, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Records{}, eris.Wrap(err, "xlsx: open file")
	}
	sheet, err := selectSheet(f, opt)
	if err != nil {
		return Records{}, err
	}
	var out Records
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if blankCells(cells) {
			continue
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

func blankCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func selectSheet(f *xlsx.File, opt Options) (*xlsx.Sheet, error) {
	if opt.SheetName != "" {
		sheet, ok := f.Sheet[opt.SheetName]
		if !ok {
			names := make([]string, len(f.Sheets))
			for i, s := range f.Sheets {
				names[i] = s.Name
			}
			return nil, eris.Errorf("xlsx: sheet %q not found (available: %s)", opt.SheetName, strings.Join(names, ", "))
		}
		return sheet, nil
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", idx, len(f.Sheets))
	}
	return f.Sheets[idx-1], nil
}

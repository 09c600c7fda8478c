package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestParseCoercesNumbers(t *testing.T) {
	content := "region,value\nA,1\nB,abc\nC,3\n"
	tbl, res, err := Parse("values.csv", []byte(content), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, 3, res.RowCount)
	assert.Equal(t, 2, res.ColumnCount)

	vals, ok := tbl.Column("value")
	require.True(t, ok)
	f, num := vals[0].Float()
	assert.True(t, num)
	assert.Equal(t, 1.0, f)
	_, num = vals[1].Float()
	assert.False(t, num)
	assert.Equal(t, "abc", vals[1].Raw)

	assert.Equal(t, []float64{1, 3}, tbl.Numbers("value"))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		numeric bool
		num     float64
	}{
		{"42", true, 42},
		{"-3.5", true, -3.5},
		{"+7", true, 7},
		{"  12.25 ", true, 12.25},
		{"1e5", false, 0},
		{"1,000", false, 0},
		{".5", false, 0},
		{"Texas", false, 0},
		{"", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseValue(tt.in)
			assert.Equal(t, tt.numeric, v.Numeric)
			if tt.numeric {
				assert.InDelta(t, tt.num, v.Num, 1e-12)
			}
			assert.Equal(t, strings.TrimSpace(tt.in), v.Raw)
		})
	}
}

func TestParseSkipsBlankLinesAndPadsShortRows(t *testing.T) {
	content := "\n\nregion , pop\n\nCalifornia,39\n   \nTexas\n"
	tbl, res, err := Parse("t.csv", []byte(content), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "pop"}, tbl.Headers())
	assert.Equal(t, 2, res.RowCount)
	pop, ok := tbl.Rows()[1].Get("pop")
	require.True(t, ok)
	assert.True(t, pop.Empty())
	assert.Contains(t, res.Warnings, "1 rows have missing values")
	assert.True(t, res.IsValid)
}

func TestParseNoDataRows(t *testing.T) {
	_, res, err := Parse("empty.csv", []byte("region,value\n"), DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, 0, res.RowCount)
	assert.Equal(t, []string{MsgNoRows}, res.Errors)

	_, res, err = Parse("nothing.csv", nil, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, MsgNoRows)
}

func TestParseSingleColumnWarns(t *testing.T) {
	_, res, err := Parse("one.csv", []byte("region\nA\nB\n"), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Contains(t, res.Warnings, MsgFewColumns)
}

func TestParseMalformedRowIsValidationError(t *testing.T) {
	content := "region,value\nA,1\n\"B,2\nC,3\n"
	_, res, err := Parse("bad.csv", []byte(content), DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "parse error")
}

func TestParseDuplicateHeadersLastWins(t *testing.T) {
	tbl, res, err := Parse("dup.csv", []byte("name,value,value\nA,1,2\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, res.ColumnCount)
	v, ok := tbl.Rows()[0].Get("value")
	require.True(t, ok)
	assert.Equal(t, "2", v.Raw)
	assert.NotEmpty(t, res.Warnings)
}

func TestParseTooLarge(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxBytes = 8
	_, _, err := Parse("big.csv", []byte("region,value\nA,1\n"), opt)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLoadFileRejectsWrongType(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
	_, _, err := LoadFile(p, DefaultOptions())
	assert.ErrorIs(t, err, ErrWrongFileType)
}

func TestLoadFileTooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("region,value\nA,1\nB,2\n"), 0o644))
	opt := DefaultOptions()
	opt.MaxBytes = 10
	_, _, err := LoadFile(p, opt)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLoadFileTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(p, []byte("state\tpop\nOregon\t4.2\n"), 0o644))
	tbl, res, err := LoadFile(p, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, []float64{4.2}, tbl.Numbers("pop"))
}

func TestLoadFileXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Data")
	require.NoError(t, err)
	for _, rec := range [][]string{{"state", "pop"}, {"Texas", "29"}, {"Ohio", "11.8"}} {
		row := sheet.AddRow()
		for _, v := range rec {
			row.AddCell().SetString(v)
		}
	}
	p := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.Save(p))

	opt := DefaultOptions()
	opt.SheetName = "Data"
	tbl, res, err := LoadFile(p, opt)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, []float64{29, 11.8}, tbl.Numbers("pop"))

	opt.SheetName = "Missing"
	_, _, err = LoadFile(p, opt)
	assert.Error(t, err)
}

func TestRoundTripPreservesColumns(t *testing.T) {
	content := "region,pop,note\nCalifornia,39.50,\"big, sunny\"\nTexas,029,\n"
	tbl, _, err := Parse("rt.csv", []byte(content), DefaultOptions())
	require.NoError(t, err)

	aug := tbl.WithColumns([]string{"matched_region", "match_confidence"}, [][]string{
		{"california", "1.00"},
		{"texas", "1.00"},
	})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, aug, ','))

	back, res, err := Parse("rt2.csv", buf.Bytes(), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	for _, col := range tbl.Headers() {
		orig, _ := tbl.Column(col)
		again, ok := back.Column(col)
		require.True(t, ok, col)
		for i := range orig {
			assert.Equal(t, orig[i].Raw, again[i].Raw, "%s row %d", col, i)
		}
	}
	m, _ := back.Column("matched_region")
	assert.Equal(t, "texas", m[1].Raw)
}

func TestSummarizeAndGuess(t *testing.T) {
	tbl, _, err := Parse("s.csv", []byte("state,pop,code\nA,1,x\nB,2,\nC,n/a,z\n"), DefaultOptions())
	require.NoError(t, err)
	sum := tbl.Summarize()
	require.Len(t, sum, 3)
	assert.Equal(t, KindText, sum[0].Kind)
	assert.Equal(t, KindNumeric, sum[1].Kind)
	assert.Equal(t, 1.0, sum[1].Min)
	assert.Equal(t, 2.0, sum[1].Max)
	assert.Equal(t, 1, sum[2].Missing)

	region, value := tbl.GuessColumns()
	assert.Equal(t, "state", region)
	assert.Equal(t, "pop", value)
	assert.Contains(t, tbl.Markdown(), "- pop: numeric")
}

func TestDistinctSkipsBlanks(t *testing.T) {
	tbl, _, err := Parse("d.csv", []byte("r,v\nA,1\n,2\nA,3\nB,4\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.Distinct("r"))
}

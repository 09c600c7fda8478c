package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/KaramelBytes/choropleth-cli/internal/regions"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Table-reading flags shared by every command that takes a table.
var (
	tblDelimiter  string
	tblSheetName  string
	tblSheetIndex int
)

func addTableFlags(c *cobra.Command) {
	c.Flags().StringVar(&tblDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	c.Flags().StringVar(&tblSheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&tblSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func tableOptions() (table.Options, error) {
	opt := table.DefaultOptions()
	if cfg != nil {
		opt.MaxBytes = cfg.MaxUploadBytes
	}
	switch tblDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, eris.Errorf("unsupported --delimiter: %s", tblDelimiter)
	}
	opt.SheetName = tblSheetName
	if tblSheetIndex > 0 {
		opt.SheetIndex = tblSheetIndex
	}
	return opt, nil
}

// loadTable reads a table and prints validation warnings to w. Validation
// errors fail the command; the table is still returned for inspection.
func loadTable(w io.Writer, path string) (*table.Table, table.ValidationResult, error) {
	opt, err := tableOptions()
	if err != nil {
		return nil, table.ValidationResult{}, err
	}
	t, res, err := table.LoadFile(path, opt)
	if err != nil {
		return nil, res, err
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn)
	}
	if !res.IsValid {
		return t, res, eris.Errorf("invalid table %s: %s", path, strings.Join(res.Errors, "; "))
	}
	return t, res, nil
}

func regionOptions() (regions.Options, string) {
	opt := regions.DefaultOptions()
	nameField := regions.DefaultNameField
	if cfg != nil {
		if len(cfg.Regions.ReservedPrefixes) > 0 {
			opt.ReservedPrefixes = cfg.Regions.ReservedPrefixes
		}
		if cfg.Regions.NameField != "" {
			nameField = cfg.Regions.NameField
		}
	}
	return opt, nameField
}

func loadRegions(path string) []string {
	opt, nameField := regionOptions()
	return regions.ExtractFile(path, opt, nameField)
}

func matchOptions() match.Options {
	if cfg == nil {
		return match.DefaultOptions()
	}
	return cfg.Match
}

// resolveScheme falls back to the configured default scheme.
func resolveScheme(id string) (colorscale.Scheme, error) {
	if id == "" && cfg != nil {
		id = cfg.DefaultScheme
	}
	if schemeRegistry == nil {
		return colorscale.Lookup(id)
	}
	return schemeRegistry.Lookup(id)
}

// resolveMethod falls back to manual when breaks are given, then to the
// configured default.
func resolveMethod(id string, breaks []float64) (classify.Method, error) {
	if id == "" {
		switch {
		case len(breaks) > 0:
			id = string(classify.Manual)
		case cfg != nil:
			id = cfg.DefaultMethod
		default:
			id = string(classify.EqualInterval)
		}
	}
	return classify.ParseMethod(id)
}

func resolveBuckets(n int) int {
	if n == 0 && cfg != nil {
		return cfg.DefaultBuckets
	}
	return n
}

// parseBreaks reads a comma-separated list of numbers.
func parseBreaks(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, eris.Wrapf(classify.ErrInvalidBreaks, "%q is not a number", p)
		}
		out = append(out, f)
	}
	return out, nil
}

// guessColumns fills empty column flags from the table summary.
func guessColumns(t *table.Table, regionCol, valueCol string) (string, string) {
	r, v := t.GuessColumns()
	if regionCol == "" {
		regionCol = r
		zap.L().Debug("guessed region column", zap.String("column", r))
	}
	if valueCol == "" {
		valueCol = v
		zap.L().Debug("guessed value column", zap.String("column", v))
	}
	return regionCol, valueCol
}

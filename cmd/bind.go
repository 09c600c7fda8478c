package cmd

import (
	"fmt"

	"github.com/KaramelBytes/choropleth-cli/internal/binding"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	bindRegionCol string
	bindValueCol  string
	bindScheme    string
	bindMethod    string
	bindBuckets   int
	bindBreaks    string
	bindOutput    string
	bindJSON      bool
)

var bindCmd = &cobra.Command{
	Use:   "bind <table> <map>",
	Short: "Match, classify and color a table against a map",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		t, _, err := loadTable(cmd.ErrOrStderr(), args[0])
		if err != nil {
			return err
		}
		regionCol, valueCol := guessColumns(t, bindRegionCol, bindValueCol)
		breaks, err := parseBreaks(bindBreaks)
		if err != nil {
			return err
		}
		method, err := resolveMethod(bindMethod, breaks)
		if err != nil {
			return err
		}
		scheme, err := resolveScheme(bindScheme)
		if err != nil {
			return err
		}

		sess := binding.NewSession(binding.Input{
			Table:        t,
			Candidates:   loadRegions(args[1]),
			RegionColumn: regionCol,
			ValueColumn:  valueCol,
			Scheme:       scheme,
			Method:       method,
			Buckets:      resolveBuckets(bindBuckets),
			ManualBreaks: breaks,
			Match:        matchOptions(),
		})
		res, err := sess.Recompute(cmd.Context())
		if err != nil {
			return err
		}

		if bindOutput != "" {
			b, err := table.EncodeCSV(res.Augment(t))
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(bindOutput, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote augmented table to %s\n", bindOutput)
		}
		if bindJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		for _, r := range res.Rows {
			target := "(unmatched)"
			if r.MatchedRegionID != "" {
				target = r.MatchedRegionID
			}
			fmt.Fprintf(out, "%s  %-24s → %-24s %s\n", r.Color, r.Region, target, r.Value)
		}
		fmt.Fprintln(out, "Legend:")
		for _, e := range res.Legend {
			fmt.Fprintf(out, "  %s  %s\n", e.Color, e.Label)
		}
		fmt.Fprintf(out, "✓ Colored %d regions (%s, %s)\n", len(res.Colors), scheme.Name, method.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bindCmd)
	bindCmd.Flags().StringVar(&bindRegionCol, "region-col", "", "column holding region names (guessed if omitted)")
	bindCmd.Flags().StringVar(&bindValueCol, "value-col", "", "numeric column to classify (guessed if omitted)")
	bindCmd.Flags().StringVar(&bindScheme, "scheme", "", "color scheme id (default from config)")
	bindCmd.Flags().StringVar(&bindMethod, "method", "", "equalInterval | quantile | natural | manual (default from config)")
	bindCmd.Flags().IntVar(&bindBuckets, "buckets", 0, "number of buckets (default from config)")
	bindCmd.Flags().StringVar(&bindBreaks, "breaks", "", "manual breaks, comma-separated (implies --method manual)")
	bindCmd.Flags().StringVarP(&bindOutput, "output", "o", "", "write the table with matched_region and match_confidence columns")
	bindCmd.Flags().BoolVar(&bindJSON, "json", false, "print the full binding as JSON")
	addTableFlags(bindCmd)
}

package cmd

import (
	"fmt"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	clsValueCol string
	clsMethod   string
	clsBuckets  int
	clsBreaks   string
	clsScheme   string
	clsJSON     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <table>",
	Short: "Classify a numeric column into buckets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		t, _, err := loadTable(cmd.ErrOrStderr(), args[0])
		if err != nil {
			return err
		}
		valueCol := clsValueCol
		if valueCol == "" {
			_, valueCol = t.GuessColumns()
		}
		if !t.HasColumn(valueCol) {
			return eris.Errorf("value column %q not found (available: %v)", valueCol, t.Headers())
		}
		breaks, err := parseBreaks(clsBreaks)
		if err != nil {
			return err
		}
		method, err := resolveMethod(clsMethod, breaks)
		if err != nil {
			return err
		}
		scheme, err := resolveScheme(clsScheme)
		if err != nil {
			return err
		}
		values := t.Numbers(valueCol)
		c, err := classify.Classify(values, method, resolveBuckets(clsBuckets), breaks)
		if err != nil {
			return err
		}
		legend := colorscale.Legend(c, colorscale.Scale(scheme, c.Buckets))

		if clsJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"classification": c,
				"legend":         legend,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "%s, %d buckets over %d values of %s\n", c.Method.Name, c.Buckets, len(values), valueCol)
		fmt.Fprintf(out, "Breaks: %v\n", c.Breaks)
		for _, e := range legend {
			fmt.Fprintf(out, "  %s  %s\n", e.Color, e.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&clsValueCol, "value-col", "", "numeric column to classify (guessed if omitted)")
	classifyCmd.Flags().StringVar(&clsMethod, "method", "", "equalInterval | quantile | natural | manual (default from config)")
	classifyCmd.Flags().IntVar(&clsBuckets, "buckets", 0, "number of buckets (default from config)")
	classifyCmd.Flags().StringVar(&clsBreaks, "breaks", "", "manual breaks, comma-separated (implies --method manual)")
	classifyCmd.Flags().StringVar(&clsScheme, "scheme", "", "color scheme for the legend (default from config)")
	classifyCmd.Flags().BoolVar(&clsJSON, "json", false, "print JSON")
	addTableFlags(classifyCmd)
}

package cmd

import (
	"fmt"

	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <table>",
	Short: "Validate a table and summarize its columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		opt, err := tableOptions()
		if err != nil {
			return err
		}
		t, res, err := table.LoadFile(args[0], opt)
		if err != nil {
			return err
		}
		if inspectJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"validation": res,
				"columns":    t.Summarize(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprint(out, t.Markdown())
		region, value := t.GuessColumns()
		fmt.Fprintf(out, "\nSuggested columns: region=%q value=%q\n", region, value)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "✗ %s\n", e)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if res.IsValid {
			fmt.Fprintf(out, "✓ %d rows, %d columns\n", res.RowCount, res.ColumnCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print JSON")
	addTableFlags(inspectCmd)
}

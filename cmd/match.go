package cmd

import (
	"fmt"

	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	matchRegionCol string
	matchJSON      bool
)

var matchCmd = &cobra.Command{
	Use:   "match <table> <map>",
	Short: "Match the region names of a table against a map",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		t, _, err := loadTable(cmd.ErrOrStderr(), args[0])
		if err != nil {
			return err
		}
		regionCol := matchRegionCol
		if regionCol == "" {
			regionCol, _ = t.GuessColumns()
		}
		if !t.HasColumn(regionCol) {
			return eris.Errorf("region column %q not found (available: %v)", regionCol, t.Headers())
		}
		candidates := loadRegions(args[1])
		results, err := match.New(candidates, matchOptions()).MatchAll(cmd.Context(), t.Distinct(regionCol))
		if err != nil {
			return err
		}
		if matchJSON {
			b, err := utils.PrettyJSON(results)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		var matched int
		for _, r := range results {
			if r.OK() {
				matched++
				fmt.Fprintf(out, "✓ %s → %s (%.2f, %s)\n", r.Original, r.Matched, r.Confidence, r.Suggestions[0].Reason)
				continue
			}
			fmt.Fprintf(out, "✗ %s (best %.2f)\n", r.Original, r.Confidence)
			for _, s := range r.Suggestions {
				fmt.Fprintf(out, "    ? %s (%.2f)\n", s.Match, s.Confidence)
			}
		}
		fmt.Fprintf(out, "Matched %d of %d regions against %d candidates\n", matched, len(results), len(candidates))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVar(&matchRegionCol, "region-col", "", "column holding region names (guessed if omitted)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "print JSON")
	addTableFlags(matchCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	schBuckets int
	schJSON    bool
)

var schemesCmd = &cobra.Command{
	Use:   "schemes [id]",
	Short: "List color schemes, or print the scale of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			all := schemeRegistry.All()
			if schJSON {
				b, err := utils.PrettyJSON(map[string]any{
					"schemes": all,
					"methods": classify.Methods(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			for _, s := range all {
				fmt.Fprintf(out, "- %s: %s [%s] %s\n", s.ID, s.Name, s.Type, strings.Join(s.Colors, " "))
			}
			fmt.Fprintln(out, "Methods:")
			for _, m := range classify.Methods() {
				fmt.Fprintf(out, "- %s: %s\n", m.ID, m.Name)
			}
			return nil
		}

		s, err := resolveScheme(args[0])
		if err != nil {
			return err
		}
		scale := colorscale.Scale(s, resolveBuckets(schBuckets))
		stops := colorscale.GradientStops(s)
		if schJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"scheme":   s,
				"scale":    scale,
				"gradient": stops,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "%s (%s)\n", s.Name, s.Type)
		fmt.Fprintf(out, "Scale: %s\n", strings.Join(scale, " "))
		fmt.Fprintf(out, "Gradient: %s\n", colorscale.CSS(stops))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
	schemesCmd.Flags().IntVar(&schBuckets, "buckets", 0, "number of colors (default from config)")
	schemesCmd.Flags().BoolVar(&schJSON, "json", false, "print JSON")
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/regions"
	"github.com/KaramelBytes/choropleth-cli/internal/utils"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	regBounds bool
	regJSON   bool
)

var regionsCmd = &cobra.Command{
	Use:   "regions <map.svg|map.shp>",
	Short: "List the region identifiers of a map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := args[0]
		if regBounds {
			if !strings.EqualFold(filepath.Ext(path), ".shp") {
				return eris.Errorf("--bounds needs a shapefile, got %s", filepath.Base(path))
			}
			_, nameField := regionOptions()
			features, err := regions.ReadShapefile(path, nameField)
			if err != nil {
				return err
			}
			if regJSON {
				type row struct {
					Name string     `json:"name"`
					Min  [2]float64 `json:"min"`
					Max  [2]float64 `json:"max"`
				}
				rows := make([]row, 0, len(features))
				for _, f := range features {
					rows = append(rows, row{
						Name: f.Name,
						Min:  [2]float64{f.Bounds.Min(0), f.Bounds.Min(1)},
						Max:  [2]float64{f.Bounds.Max(0), f.Bounds.Max(1)},
					})
				}
				b, err := utils.PrettyJSON(rows)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			for _, f := range features {
				fmt.Fprintf(out, "- %s [%.4f %.4f, %.4f %.4f]\n", f.Name,
					f.Bounds.Min(0), f.Bounds.Min(1), f.Bounds.Max(0), f.Bounds.Max(1))
			}
			return nil
		}

		ids := loadRegions(path)
		if regJSON {
			b, err := utils.PrettyJSON(ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "(no regions)")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintf(out, "- %s\n", id)
		}
		fmt.Fprintf(out, "✓ %d regions\n", len(ids))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	regionsCmd.Flags().BoolVar(&regBounds, "bounds", false, "shapefile: print the bounds of every named feature")
	regionsCmd.Flags().BoolVar(&regJSON, "json", false, "print JSON")
}

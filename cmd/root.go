package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	cfgpkg "github.com/KaramelBytes/choropleth-cli/internal/config"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Presets plus config-declared custom schemes
	schemeRegistry *colorscale.Registry
)

var rootCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Choropleth CLI: bind tabular data to map regions and color them",
	Long: `Choropleth matches the region names of a CSV/TSV/XLSX table against the
regions of an SVG map or shapefile, classifies a value column into buckets and
derives a color for every matched region.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if debug {
			c.Log.Level = "debug"
		}
		if err := cfgpkg.InitLogger(c.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		reg, err := colorscale.NewRegistry(c.CustomSchemes)
		if err != nil {
			return eris.Wrap(err, "load custom schemes")
		}
		cfg = c
		schemeRegistry = reg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.choropleth/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

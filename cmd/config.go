package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	cfgpkg "github.com/KaramelBytes/choropleth-cli/internal/config"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "max_upload_bytes: %d\n", cfg.MaxUploadBytes)
		fmt.Fprintf(out, "default_scheme: %s\n", cfg.DefaultScheme)
		fmt.Fprintf(out, "default_method: %s\n", cfg.DefaultMethod)
		fmt.Fprintf(out, "default_buckets: %d\n", cfg.DefaultBuckets)
		fmt.Fprintf(out, "match.threshold: %.3f\n", cfg.Match.Threshold)
		fmt.Fprintf(out, "match.min_similarity: %.3f\n", cfg.Match.MinSimilarity)
		fmt.Fprintf(out, "match.max_suggestions: %d\n", cfg.Match.MaxSuggestions)
		fmt.Fprintf(out, "match.max_cost: %d\n", cfg.Match.MaxCost)
		fmt.Fprintf(out, "match.workers: %d\n", cfg.Match.Workers)
		if len(cfg.Match.Aliases) > 0 {
			fmt.Fprintf(out, "match.aliases: %d\n", len(cfg.Match.Aliases))
		}
		fmt.Fprintf(out, "regions.name_field: %s\n", cfg.Regions.NameField)
		fmt.Fprintf(out, "regions.reserved_prefixes: %s\n", strings.Join(cfg.Regions.ReservedPrefixes, ","))
		if len(cfg.CustomSchemes) > 0 {
			ids := make([]string, 0, len(cfg.CustomSchemes))
			for _, s := range cfg.CustomSchemes {
				ids = append(ids, s.ID)
			}
			fmt.Fprintf(out, "custom_schemes: %s\n", strings.Join(ids, ","))
		}
		fmt.Fprintf(out, "server.addr: %s\n", cfg.Server.Addr)
		fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
		fmt.Fprintf(out, "log.format: %s\n", cfg.Log.Format)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "max_upload_bytes":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil || i <= 0 {
				return eris.Errorf("invalid positive int for max_upload_bytes: %v", val)
			}
			cfg.MaxUploadBytes = i
		case "default_scheme":
			if _, err := schemeRegistry.Lookup(val); err != nil {
				return err
			}
			cfg.DefaultScheme = val
		case "default_method":
			m, err := classify.ParseMethod(val)
			if err != nil {
				return err
			}
			cfg.DefaultMethod = m.ID
		case "default_buckets":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return eris.Errorf("invalid int for default_buckets: %v", val)
			}
			cfg.DefaultBuckets = i
		case "match.threshold", "match.min_similarity":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return eris.Errorf("invalid float in [0,1] for %s: %v", key, val)
			}
			if key == "match.threshold" {
				cfg.Match.Threshold = f
			} else {
				cfg.Match.MinSimilarity = f
			}
		case "match.max_suggestions", "match.max_cost", "match.workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return eris.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "match.max_suggestions":
				cfg.Match.MaxSuggestions = i
			case "match.max_cost":
				cfg.Match.MaxCost = i
			default:
				cfg.Match.Workers = i
			}
		case "match.alias":
			// value is "alias=region"
			alias, region, ok := strings.Cut(val, "=")
			if !ok || strings.TrimSpace(alias) == "" || strings.TrimSpace(region) == "" {
				return eris.Errorf("invalid alias %q (use alias=region)", val)
			}
			if cfg.Match.Aliases == nil {
				cfg.Match.Aliases = map[string]string{}
			}
			cfg.Match.Aliases[strings.TrimSpace(alias)] = strings.TrimSpace(region)
		case "regions.name_field":
			cfg.Regions.NameField = val
		case "regions.reserved_prefixes":
			cfg.Regions.ReservedPrefixes = strings.Split(val, ",")
		case "custom_scheme":
			// value is "id=#hex,#hex[,...]"
			id, colors, ok := strings.Cut(val, "=")
			if !ok {
				return eris.Errorf("invalid custom_scheme %q (use id=#hex,#hex)", val)
			}
			s, err := colorscale.Validate(colorscale.Scheme{ID: id, Colors: strings.Split(colors, ",")})
			if err != nil {
				return err
			}
			replaced := false
			for i := range cfg.CustomSchemes {
				if cfg.CustomSchemes[i].ID == s.ID {
					cfg.CustomSchemes[i] = s
					replaced = true
				}
			}
			if !replaced {
				cfg.CustomSchemes = append(cfg.CustomSchemes, s)
			}
		case "server.addr":
			cfg.Server.Addr = val
		case "log.level":
			cfg.Log.Level = val
		case "log.format":
			switch val {
			case "json", "console":
				cfg.Log.Format = val
			default:
				return eris.Errorf("invalid log.format: %s (use json or console)", val)
			}
		default:
			return eris.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

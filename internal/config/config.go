package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	DefaultScheme  string `mapstructure:"default_scheme" yaml:"default_scheme"`
	DefaultMethod  string `mapstructure:"default_method" yaml:"default_method"`
	DefaultBuckets int    `mapstructure:"default_buckets" yaml:"default_buckets"`

	Match   match.Options `mapstructure:"match" yaml:"match"`
	Regions RegionsConfig `mapstructure:"regions" yaml:"regions"`

	// User schemes, validated on top of the presets.
	CustomSchemes []colorscale.Scheme `mapstructure:"custom_schemes" yaml:"custom_schemes,omitempty"`

	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// RegionsConfig tunes geometry extraction.
type RegionsConfig struct {
	NameField        string   `mapstructure:"name_field" yaml:"name_field"`
	ReservedPrefixes []string `mapstructure:"reserved_prefixes" yaml:"reserved_prefixes"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig selects level and encoder of the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Dir returns ~/.choropleth.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "config: resolve home dir")
	}
	return filepath.Join(home, ".choropleth"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.choropleth/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "config: mkdir config dir")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return eris.Wrap(err, "config: write config")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_upload_bytes", 20<<20)
	v.SetDefault("default_scheme", "buenos-aries")
	v.SetDefault("default_method", "equalInterval")
	v.SetDefault("default_buckets", 5)

	m := match.DefaultOptions()
	v.SetDefault("match.threshold", m.Threshold)
	v.SetDefault("match.min_similarity", m.MinSimilarity)
	v.SetDefault("match.max_suggestions", m.MaxSuggestions)
	v.SetDefault("match.max_cost", m.MaxCost)
	v.SetDefault("match.workers", m.Workers)
	v.SetDefault("match.aliases", map[string]string{})

	v.SetDefault("regions.name_field", "NAME")
	v.SetDefault("regions.reserved_prefixes", []string{
		"defs", "metadata", "namedview", "sodipodi", "inkscape",
		"clippath", "clip-path", "lineargradient", "radialgradient",
		"pattern", "mask", "filter", "marker", "layer",
	})

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHOROPLETH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrapf(err, "config: read %s", cfgFile)
		}
	} else {
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Global) Validate() error {
	var problems []string
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "max_upload_bytes must be positive")
	}
	if c.DefaultBuckets < 1 {
		problems = append(problems, "default_buckets must be at least 1")
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		problems = append(problems, "match.threshold must be within [0,1]")
	}
	if c.Match.MinSimilarity < 0 || c.Match.MinSimilarity > 1 {
		problems = append(problems, "match.min_similarity must be within [0,1]")
	}
	if c.Match.MaxSuggestions < 1 {
		problems = append(problems, "match.max_suggestions must be at least 1")
	}
	for _, s := range c.CustomSchemes {
		if _, err := colorscale.Validate(s); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	// stdout carries command output; logs go to stderr.
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

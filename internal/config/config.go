// Package config loads lyricval settings from defaults, an optional YAML
// file and LYRICVAL_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal/batch"
	"github.com/valpere/lyricval/internal/collab"
	"github.com/valpere/lyricval/internal/render"
	"github.com/valpere/lyricval/internal/validator"
)

// EnvPrefix prefixes every environment override, e.g. LYRICVAL_LOG_LEVEL.
const EnvPrefix = "LYRICVAL"

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Store     StoreConfig     `mapstructure:"store"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Ollama    collab.Config   `mapstructure:"ollama"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ValidatorConfig struct {
	validator.Thresholds `mapstructure:",squash"`
	Mode                 string `mapstructure:"mode"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// Load reads configuration. An empty path searches for lyricval.yaml in the
// working directory and the user config directory; a missing file there is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("lyricval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(UserConfigDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("validator.max_missing_rate", validator.DefaultMaxMissingRate)
	v.SetDefault("validator.lenient_missing_rate", validator.DefaultLenientMissingRate)
	v.SetDefault("validator.mode", string(render.Diagnostic))

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", "./data/lyricval.db")

	v.SetDefault("batch.workers", batch.DefaultWorkers)

	v.SetDefault("ollama.url", collab.DefaultURL)
	v.SetDefault("ollama.model", collab.DefaultModel)
	v.SetDefault("ollama.timeout", collab.DefaultTimeout.String())
}

// NewValidator builds a validator from the validator section.
func (c *Config) NewValidator(log *zap.Logger) (*validator.Validator, error) {
	mode, err := render.ParseMode(c.Validator.Mode)
	if err != nil {
		return nil, err
	}
	return validator.New(
		validator.WithThresholds(c.Validator.Thresholds),
		validator.WithMode(mode),
		validator.WithLogger(log),
	)
}

// UserConfigDir returns the per-user config directory for lyricval.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lyricval")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "lyricval")
	}
	return filepath.Join(home, ".config", "lyricval")
}

// Package config resolves CLI settings from flags, environment, an optional
// .vista.yaml and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maloquacious/vista/internal/store"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the resolved host settings.
type Config struct {
	File      string `mapstructure:"file"`
	HistoryDB string `mapstructure:"history_db"`
	LogLevel  string `mapstructure:"log_level"`
	Output    string `mapstructure:"output"`
	NoColor   bool   `mapstructure:"no_color"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		File:     store.DefaultVersionFile,
		LogLevel: "warn",
		Output:   OutputText,
	}
}

// keys maps config keys to the flag that sets them.
var keys = map[string]string{
	"file":       "file",
	"history_db": "history-db",
	"log_level":  "log-level",
	"output":     "output",
	"no_color":   "no-color",
}

// BindFlags registers the persistent flags that feed Load.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("config", "", "config file (default .vista.yaml in the working directory)")
	fs.StringP("file", "f", d.File, "version properties file")
	fs.String("history-db", d.HistoryDB, "SQLite file that records every bump (disabled when empty)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.StringP("output", "o", d.Output, "output format (text, json, yaml)")
	fs.Bool("no-color", d.NoColor, "disable colored output")
}

// Load resolves settings. Only flags that were set on the command line take
// precedence over environment and config file values.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("file", d.File)
	v.SetDefault("history_db", d.HistoryDB)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)
	v.SetDefault("no_color", d.NoColor)

	v.SetEnvPrefix("VISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	cfgFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			cfgFile = f.Value.String()
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".vista")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if fs != nil {
		for key, name := range keys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the CLI cannot act on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return errors.New("version file name must not be empty")
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q: want text, json or yaml", c.Output)
	}
	return nil
}

// Package config holds the runtime configuration of the bingo tool.
// Values come from .bingo.toml, BINGO_* environment variables (a .env file
// is loaded first) and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// FileName is the default config file name, looked up in the working
// directory and the home directory.
const FileName = ".bingo.toml"

// Config holds all runtime configuration.
type Config struct {
	LogLevel      string `mapstructure:"log_level" toml:"log_level"`
	SaveFile      string `mapstructure:"save_file" toml:"save_file"`
	ObjectiveFile string `mapstructure:"objective_file" toml:"objective_file"`
	FeaturedFile  string `mapstructure:"featured_file" toml:"featured_file"`
	Size          int    `mapstructure:"size" toml:"size"`
	Featured      bool   `mapstructure:"featured" toml:"featured"`
	Seed          uint64 `mapstructure:"seed" toml:"seed"`
	DailySalt     string `mapstructure:"daily_salt" toml:"daily_salt"`
	Addr          string `mapstructure:"addr" toml:"addr"`
	TokenSecret   string `mapstructure:"token_secret" toml:"token_secret"`
	Watch         bool   `mapstructure:"watch" toml:"watch"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		SaveFile:  "bingo.json",
		Size:      5,
		Featured:  true,
		DailySalt: "bingo",
		Addr:      "127.0.0.1:5175",
		Watch:     true,
	}
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("save_file", d.SaveFile)
	v.SetDefault("objective_file", d.ObjectiveFile)
	v.SetDefault("featured_file", d.FeaturedFile)
	v.SetDefault("size", d.Size)
	v.SetDefault("featured", d.Featured)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("daily_salt", d.DailySalt)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("token_secret", d.TokenSecret)
	v.SetDefault("watch", d.Watch)
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Write stores cfg as TOML at path. An existing file is kept unless force
// is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

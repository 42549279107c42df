package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ExportRoot         string `toml:"export_root"`
	DBPath             string `toml:"db_path"`
	LogLevel           string `toml:"log_level"`
	Timezone           string `toml:"timezone"`
	MonthFirstFallback bool   `toml:"month_first_fallback"`
	PreserveColons     bool   `toml:"preserve_colons"`
	StopWordsFile      string `toml:"stop_words_file"`
	ListenAddr         string `toml:"listen_addr"`

	location *time.Location
}

// Path returns the config file location, honouring $WCA_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("WCA_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wca", "config.toml"), nil
}

func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

// LoadFile applies defaults, then the file at cfgPath if it exists.
func LoadFile(cfgPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ExportRoot:         filepath.Join(home, "WhatsApp"),
		DBPath:             filepath.Join(home, ".config", "wca", "wca.db"),
		LogLevel:           "info",
		Timezone:           "UTC",
		MonthFirstFallback: true,
		ListenAddr:         "127.0.0.1:8760",
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.StopWordsFile = expandHome(cfg.StopWordsFile, home)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

// Location is the zone transcript wall-clock times are read in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/sambenfield/galmap/internal/logger"
)

// Config represents the galmap configuration file
// (~/.config/galmap/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	MapsDir    string `yaml:"maps_dir"`
	DefaultMap string `yaml:"default_map"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string   `yaml:"server_address"`
	RateLimit     *float64 `yaml:"rate_limit"`
	MaxOpen       *int64   `yaml:"max_open"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "galmap", "config.yaml")
}

// LoadConfig reads the config file, returning a zero Config when the
// file does not exist or does not parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyCommonConfig fills the shared flag variables from the config
// file when the corresponding CLI flag was not explicitly set.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.MapsDir != "" && !c.IsSet("maps-dir") {
		mapsDir = cfg.MapsDir
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig fills serve command variables from the config file.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, rps *float64, maxOpen *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.RateLimit != nil && !c.IsSet("rate-limit") {
		*rps = *cfg.RateLimit
	}
	if cfg.MaxOpen != nil && !c.IsSet("max-open") {
		*maxOpen = *cfg.MaxOpen
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "maps-dir",
			Usage:       "directory holding the map files",
			Sources:     cli.EnvVars("GALMAP_DIR"),
			Destination: &mapsDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

// buildLogger resolves the logger from the shared flags.
func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if logFormat == "json" {
		return logger.JSON(os.Stderr, level)
	}
	return logger.Pretty(os.Stderr, level)
}

// Package config loads reldiagram settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tordrt/reldiagram/internal/diagram"
)

// Prefix is prepended to every environment variable name
const Prefix = "RELDIAGRAM_"

type AppConfig struct {
	// DatabaseURLs lists the databases to extract schemas from
	DatabaseURLs []string `env:"DATABASE_URLS" envSeparator:","`
	// SchemaFile is a YAML or JSON schema document used instead of, or
	// saved from, the databases
	SchemaFile  string       `env:"SCHEMA_FILE"`
	TableColors []string     `env:"TABLE_COLORS" envSeparator:","`
	Layout      LayoutConfig `envPrefix:"LAYOUT_"`
	Server      ServerConfig `envPrefix:"SERVER_"`
}

type LayoutConfig struct {
	TierWidth float64 `env:"TIER_WIDTH" envDefault:"350"`
	RowHeight float64 `env:"ROW_HEIGHT" envDefault:"21"`
	Padding   float64 `env:"PADDING" envDefault:"25"`
	NodeWidth float64 `env:"NODE_WIDTH" envDefault:"250"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:":8080"`
	// GestureTTL bounds how long an unfinished retarget gesture is kept
	GestureTTL time.Duration `env:"GESTURE_TTL" envDefault:"5m"`
}

// Options converts the layout settings for the diagram builder
func (c LayoutConfig) Options() diagram.LayoutOptions {
	return diagram.LayoutOptions{
		TierWidth: c.TierWidth,
		RowHeight: c.RowHeight,
		Padding:   c.Padding,
		NodeWidth: c.NodeWidth,
	}
}

// Load reads envPath into the process environment when it exists, then
// parses the RELDIAGRAM_ variables. Variables already set win over the file.
func Load(envPath string) (*AppConfig, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	for name, v := range map[string]float64{
		"LAYOUT_TIER_WIDTH": c.Layout.TierWidth,
		"LAYOUT_ROW_HEIGHT": c.Layout.RowHeight,
		"LAYOUT_PADDING":    c.Layout.Padding,
		"LAYOUT_NODE_WIDTH": c.Layout.NodeWidth,
	} {
		if v <= 0 {
			return fmt.Errorf("%s%s must be positive, got %g", Prefix, name, v)
		}
	}
	if c.Server.GestureTTL <= 0 {
		return fmt.Errorf("%sSERVER_GESTURE_TTL must be positive, got %s", Prefix, c.Server.GestureTTL)
	}
	return nil
}

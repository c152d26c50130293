package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// DefaultSearchPaths are the sections searched when a query names no path.
var DefaultSearchPaths = []string{
	"/work/",
	"/products/",
	"/projects/",
	"/archive/",
	"/blog/",
}

type Config struct {
	SiteTitle     string    `mapstructure:"siteTitle"`
	BaseURL       string    `mapstructure:"baseURL"`
	OutputDir     string    `mapstructure:"outputDir"`
	ContentDir    string    `mapstructure:"contentDir"`
	LayoutsDir    string    `mapstructure:"layoutsDir"`
	StaticDir     string    `mapstructure:"staticDir"`
	Mode          string    `mapstructure:"mode"`
	LogLevel      string    `mapstructure:"logLevel"`
	IndexPath     string    `mapstructure:"indexPath"`
	SearchPaths   []string  `mapstructure:"searchPaths"`
	Sections      []string  `mapstructure:"sections"`
	FeedPaths     []string  `mapstructure:"feedPaths"`
	FeedLimit     int       `mapstructure:"feedLimit"`
	NewWithinDays int       `mapstructure:"newWithinDays"`
	Workers       int       `mapstructure:"workers"`
	Nav           NavConfig `mapstructure:"nav"`
}

type NavConfig struct {
	Sections []NavSection `mapstructure:"sections"`
	Top      []NavLink    `mapstructure:"top"`
}

type NavSection struct {
	Name  string    `mapstructure:"name"`
	Links []NavLink `mapstructure:"links"`
}

// NavLink is a configured navigation entry. Contextual links are only shown
// while the current page is below Path.
type NavLink struct {
	Path        string `mapstructure:"path"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Contextual  bool   `mapstructure:"contextual"`
}

// Default returns the configuration used when no file or env overrides it.
func Default() Config {
	return Config{
		SiteTitle:     "My Portfolio",
		OutputDir:     "public",
		ContentDir:    "content",
		LayoutsDir:    "layouts",
		StaticDir:     "static",
		Mode:          ModeProduction,
		LogLevel:      "info",
		SearchPaths:   append([]string(nil), DefaultSearchPaths...),
		Sections:      []string{"work", "products", "projects", "blog", "archive"},
		FeedPaths:     []string{"/blog/", "/work/"},
		FeedLimit:     50,
		NewWithinDays: 90,
		Workers:       8,
	}
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("config outputDir is required")
	}
	if c.ContentDir == "" {
		return errors.New("config contentDir is required")
	}
	switch c.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("config mode %q must be %q or %q", c.Mode, ModeProduction, ModeDevelopment)
	}
	if c.FeedLimit < 0 {
		return errors.New("config feedLimit must not be negative")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Mode == ModeDevelopment
}

func (c *Config) SiteURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Config) SearchIndexPath() string {
	if c.IndexPath != "" {
		return c.IndexPath
	}
	return filepath.Join(c.OutputDir, "search.db")
}

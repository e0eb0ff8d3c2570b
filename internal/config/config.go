// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for a deployment over the planning.data.gov.uk establishment dataset.
const (
	DefaultRegionDistrict = "E08000025"
	DefaultGeographyBase  = "https://www.planning.data.gov.uk/prefix/statistical-geography/reference/"
	DefaultEntityBase     = "https://www.planning.data.gov.uk/entity/"
	DefaultTileUpstream   = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution    = "© OpenStreetMap contributors"
	DefaultMaxZoom        = 19
	DefaultSessions       = 1024
)

// Config represents the root configuration file structure.
type Config struct {
	Dataset  Dataset `yaml:"dataset"`
	Region   Region  `yaml:"region"`
	Views    Views   `yaml:"views"`
	Links    Links   `yaml:"links"`
	Tiles    Tiles   `yaml:"tiles"`
	Colours  Colours `yaml:"colours"`
	Sessions int     `yaml:"sessions,omitempty"`
}

// Dataset describes the two resources the map is built from.
// Locations may be local paths or http(s) URLs.
type Dataset struct {
	Format         string `yaml:"format"` // geojson or json
	Establishments string `yaml:"establishments"`
	Mappings       string `yaml:"mappings"`
}

// Region selects the subset shown by the regional view.
type Region struct {
	District string `yaml:"district"`
}

// Views holds the camera and toggle label of each view.
type Views struct {
	National View `yaml:"national"`
	Regional View `yaml:"regional"`
}

// View is a map camera position with its toggle label.
type View struct {
	Label  string     `yaml:"label" json:"label"`
	Center [2]float64 `yaml:"center" json:"center"` // [Lat, Lon]
	Zoom   int        `yaml:"zoom" json:"zoom"`
}

// Links are the bases of outbound popup links.
type Links struct {
	Geography string `yaml:"geography"`
	Entity    string `yaml:"entity"`
}

// Tiles configures the caching tile proxy.
type Tiles struct {
	Upstream    string  `yaml:"upstream"`
	Attribution string  `yaml:"attribution,omitempty"`
	CacheDir    string  `yaml:"cache_dir,omitempty"`
	UserAgent   string  `yaml:"user_agent,omitempty"`
	MaxZoom     int     `yaml:"max_zoom,omitempty"`
	RPS         float64 `yaml:"rps,omitempty"`
	Burst       int     `yaml:"burst,omitempty"`
	Quality     float32 `yaml:"quality,omitempty"`
}

// Colours selects the type colour strategy.
type Colours struct {
	Strategy string   `yaml:"strategy,omitempty"` // random or palette
	Palette  []string `yaml:"palette,omitempty"` // CSS colours, built-in palette when empty
}

// Load reads and parses the YAML configuration file from the specified path.
// Missing values are filled in with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Dataset.Format == "" {
		c.Dataset.Format = "geojson"
	}
	if c.Region.District == "" {
		c.Region.District = DefaultRegionDistrict
	}

	if c.Views.National.Label == "" {
		c.Views.National.Label = "England"
	}
	if c.Views.National.Center == [2]float64{} {
		c.Views.National.Center = [2]float64{52.5, -1.85}
	}
	if c.Views.National.Zoom <= 0 {
		c.Views.National.Zoom = 6
	}
	if c.Views.Regional.Label == "" {
		c.Views.Regional.Label = "Birmingham Only"
	}
	if c.Views.Regional.Center == [2]float64{} {
		c.Views.Regional.Center = [2]float64{52.5, -1.85}
	}
	if c.Views.Regional.Zoom <= 0 {
		c.Views.Regional.Zoom = 11
	}

	if c.Links.Geography == "" {
		c.Links.Geography = DefaultGeographyBase
	}
	if c.Links.Entity == "" {
		c.Links.Entity = DefaultEntityBase
	}

	if c.Tiles.Upstream == "" {
		c.Tiles.Upstream = DefaultTileUpstream
	}
	if c.Tiles.Attribution == "" {
		c.Tiles.Attribution = DefaultAttribution
	}
	if c.Tiles.CacheDir == "" {
		c.Tiles.CacheDir = "tiles"
	}
	if c.Tiles.UserAgent == "" {
		c.Tiles.UserAgent = "edumap/1.0"
	}
	if c.Tiles.MaxZoom <= 0 {
		c.Tiles.MaxZoom = DefaultMaxZoom
	}
	if c.Tiles.RPS <= 0 {
		c.Tiles.RPS = 2
	}
	if c.Tiles.Burst <= 0 {
		c.Tiles.Burst = 4
	}
	if c.Tiles.Quality <= 0 {
		c.Tiles.Quality = 80
	}

	if c.Colours.Strategy == "" {
		c.Colours.Strategy = "random"
	}
	if c.Sessions <= 0 {
		c.Sessions = DefaultSessions
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if c.Dataset.Establishments == "" {
		return fmt.Errorf("dataset.establishments is required")
	}
	if c.Dataset.Mappings == "" {
		return fmt.Errorf("dataset.mappings is required")
	}

	switch c.Dataset.Format {
	case "geojson", "json":
	default:
		return fmt.Errorf("dataset.format %q: expected geojson or json", c.Dataset.Format)
	}

	switch c.Colours.Strategy {
	case "random", "palette":
	default:
		return fmt.Errorf("colours.strategy %q: expected random or palette", c.Colours.Strategy)
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/geo"
	"github.com/woozymasta/edumap/internal/logger"
	"github.com/woozymasta/edumap/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Out         string `short:"o" long:"out"         env:"OUT_FILE"    description:"Write markers as normalised GeoJSON to this path"`
	Force       bool   `short:"f" long:"force"       description:"Force overwrite of existing files"`
	Prefetch    bool   `short:"t" long:"prefetch"    description:"Download tiles covering the dataset"`
	MinZoom     int    `long:"min-zoom"              env:"MIN_ZOOM"    description:"Lowest zoom to prefetch"  default:"0"`
	MaxZoom     int    `short:"z" long:"max-zoom"    env:"MAX_ZOOM"    description:"Highest zoom to prefetch" default:"11"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"4"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	strategy, err := colour.New(cfg.Colours.Strategy, cfg.Colours.Palette)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid colour configuration")
	}

	log.Info().
		Str("establishments", cfg.Dataset.Establishments).
		Str("mappings", cfg.Dataset.Mappings).
		Str("format", cfg.Dataset.Format).
		Msg("Starting loader")

	ctx := context.Background()
	a, err := atlas.Load(ctx, cfg, strategy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load establishment data")
	}

	summarize(a)

	if opts.Out != "" {
		if err := saveGeoJSON(opts.Out, atlas.FeatureCollection(a.Markers), opts.Force); err != nil {
			log.Fatal().Err(err).Str("path", opts.Out).Msg("Failed to write GeoJSON")
		}
	}

	if opts.Prefetch {
		prefetch(ctx, cfg, a, opts)
	}

	log.Info().Msg("Loader finished successfully")
}

// summarize logs the type breakdown of both views.
func summarize(a *atlas.Atlas) {
	for _, code := range a.Sets.National.Codes() {
		c, _ := a.Colours.Lookup(code)
		log.Info().
			Str("type", code).
			Str("name", a.Mappings.TypeName(code)).
			Str("colour", c.String()).
			Int("national", len(a.Sets.National.Markers(code))).
			Int("regional", len(a.Sets.Regional.Markers(code))).
			Msg("Establishment type")
	}

	log.Info().
		Int("markers", len(a.Markers)).
		Int("skipped", a.Skipped).
		Int("regional", a.Sets.Regional.Len()).
		Int("types", a.Colours.Len()).
		Msg("Dataset summary")
}

func prefetch(ctx context.Context, cfg *config.Config, a *atlas.Atlas, opts Options) {
	bounds, ok := a.Sets.National.Bounds()
	if !ok {
		log.Warn().Msg("No positioned markers, nothing to prefetch")
		return
	}

	if opts.MaxZoom > cfg.Tiles.MaxZoom {
		opts.MaxZoom = cfg.Tiles.MaxZoom
	}

	cache, err := tiles.New(cfg.Tiles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create tile cache")
	}

	coords := tiles.Cover(bounds, opts.MinZoom, opts.MaxZoom)
	log.Info().
		Int("tiles", len(coords)).
		Int("min_zoom", opts.MinZoom).
		Int("max_zoom", opts.MaxZoom).
		Int("concurrency", opts.Concurrency).
		Msg("Prefetching tiles")

	cached, failed := cache.Prefetch(ctx, coords, opts.Concurrency)
	ev := log.Info()
	if failed > 0 {
		ev = log.Warn()
	}
	ev.
		Int("cached", cached).
		Int("failed", failed).
		Msg("Tiles prefetched")
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(path string, fc geo.GeoJSONFeatureCollection, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		log.Warn().Str("path", path).Msg("GeoJSON file exists, use --force to overwrite")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	if err := json.NewEncoder(f).Encode(fc); err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("features", len(fc.Features)).
		Msg("GeoJSON written")
	return nil
}

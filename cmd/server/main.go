package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/logger"
	"github.com/woozymasta/edumap/internal/metrics"
	"github.com/woozymasta/edumap/internal/server"
	"github.com/woozymasta/edumap/internal/session"
	"github.com/woozymasta/edumap/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string        `short:"c" long:"config"       env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr        string        `short:"a" long:"addr"         env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port        int           `short:"p" long:"port"         env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	LoadTimeout time.Duration `short:"t" long:"load-timeout" env:"LOAD_TIMEOUT"   description:"Dataset load timeout"       default:"2m"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	strategy, err := colour.New(cfg.Colours.Strategy, cfg.Colours.Palette)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid colour configuration")
	}

	reg := metrics.InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), opts.LoadTimeout)
	a, err := atlas.Load(ctx, cfg, strategy)
	cancel()
	if err != nil {
		// no partial map is ever served
		log.Fatal().Err(err).Msg("Failed to load establishment data")
	}

	store, err := session.NewStore(a, cfg.Sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session store")
	}

	tileCache, err := tiles.New(cfg.Tiles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create tile cache")
	}

	srvCtx, err := server.NewServerContext(cfg, a, store, tileCache, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("markers", len(a.Markers)).
		Int("regional", a.Sets.Regional.Len()).
		Int("max_sessions", cfg.Sessions).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

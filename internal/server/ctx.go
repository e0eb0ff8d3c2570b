package server

import (
	"encoding/json"
	"fmt"

	"github.com/woozymasta/edumap/assets"
	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/session"
	"github.com/woozymasta/edumap/internal/tiles"
	"github.com/woozymasta/edumap/internal/ui"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config      *config.Config
	Atlas       *atlas.Atlas
	Sessions    *session.Store
	Tiles       *tiles.Cache
	Registry    *prometheus.Registry
	Swatches    map[string][]byte
	IndexHTML   []byte
	Favicon     []byte
	MarkersJSON []byte
}

// NewServerContext prepares everything that does not change between requests:
// the full marker collection and one legend swatch per type code.
func NewServerContext(cfg *config.Config, a *atlas.Atlas, store *session.Store, tc *tiles.Cache, reg *prometheus.Registry) (*ServerContext, error) {
	log.Info().Int("markers", len(a.Markers)).Msg("Initializing server context")

	markersJSON, err := json.Marshal(atlas.FeatureCollection(a.Markers))
	if err != nil {
		return nil, fmt.Errorf("encode markers: %w", err)
	}

	swatches := make(map[string][]byte)
	for _, code := range a.Sets.National.Codes() {
		c, ok := a.Colours.Lookup(code)
		if !ok {
			continue
		}

		data, err := ui.Swatch(c, ui.SwatchSize)
		if err != nil {
			return nil, fmt.Errorf("swatch %s: %w", code, err)
		}
		swatches[code] = data

		log.Trace().
			Str("type", code).
			Str("colour", c.String()).
			Msg("Legend swatch rendered")
	}

	log.Info().
		Int("markers_bytes", len(markersJSON)).
		Int("swatches", len(swatches)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:      cfg,
		Atlas:       a,
		Sessions:    store,
		Tiles:       tc,
		Registry:    reg,
		Swatches:    swatches,
		IndexHTML:   assets.Index,
		Favicon:     assets.Favicon,
		MarkersJSON: markersJSON,
	}, nil
}

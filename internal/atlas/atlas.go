// Package atlas runs the load pipeline and holds its read-only result:
// markers, the two marker-sets and the colour table.
package atlas

import (
	"context"
	"fmt"

	"github.com/woozymasta/edumap/internal/cluster"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/dataset"
	"github.com/woozymasta/edumap/internal/geo"
	"github.com/woozymasta/edumap/internal/marker"
	"github.com/woozymasta/edumap/internal/metrics"
	"github.com/woozymasta/edumap/internal/ui"
	"github.com/woozymasta/edumap/internal/view"

	"github.com/rs/zerolog/log"
)

// Atlas is shared by all sessions and never mutated after Build.
type Atlas struct {
	Sets     cluster.Sets
	Mappings dataset.Mappings
	Colours  *colour.Table
	Views    config.Views
	Markers  []*marker.Marker
	byID     map[int]*marker.Marker
	Skipped  int
}

// Load fetches the configured dataset and builds the atlas from it.
func Load(ctx context.Context, cfg *config.Config, strategy colour.Strategy) (*Atlas, error) {
	src, err := dataset.SourceFor(cfg.Dataset.Format)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewLoader(src, cfg.Dataset.Establishments, cfg.Dataset.Mappings).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return Build(ds, cfg, strategy), nil
}

// Build turns a dataset into markers and partitions them.
func Build(ds *dataset.Dataset, cfg *config.Config, strategy colour.Strategy) *Atlas {
	colours := colour.NewTable(strategy)
	b := marker.NewBuilder(ds.Mappings, colours, cfg.Links)

	b.AssignColours(ds.Records)
	markers, skipped := b.BuildAll(ds.Records)
	metrics.ObserveRecords(len(markers), skipped)

	sets := cluster.Manager{District: cfg.Region.District}.Partition(markers)

	byID := make(map[int]*marker.Marker, len(markers))
	for _, m := range markers {
		byID[m.ID] = m
	}

	log.Debug().Int("skipped", skipped).Msg("Records without a usable position skipped")
	log.Info().
		Int("records", len(ds.Records)).
		Int("markers", len(markers)).
		Int("regional", sets.Regional.Len()).
		Int("types", colours.Len()).
		Str("district", cfg.Region.District).
		Msg("Atlas built")

	return &Atlas{
		Markers:  markers,
		Sets:     sets,
		Mappings: ds.Mappings,
		Colours:  colours,
		Views:    cfg.Views,
		Skipped:  skipped,
		byID:     byID,
	}
}

// Set returns the marker-set behind a view.
func (a *Atlas) Set(v view.Name) *cluster.MarkerSet {
	if v == view.Regional {
		return a.Sets.Regional
	}
	return a.Sets.National
}

// Marker looks a marker up by ID.
func (a *Atlas) Marker(id int) (*marker.Marker, bool) {
	m, ok := a.byID[id]
	return m, ok
}

// Select returns the markers a fresh view shows for a filter value.
func (a *Atlas) Select(v view.Name, filter string) []*marker.Marker {
	set := a.Set(v)
	if filter == "" || filter == ui.All {
		return set.All()
	}
	return set.Markers(filter)
}

// FeatureCollection renders markers as GeoJSON.
func FeatureCollection(markers []*marker.Marker) geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection(len(markers))
	for _, m := range markers {
		fc.Features = append(fc.Features, m.Feature())
	}
	return fc
}

// NewController wires a controller over a scene with fresh clusters, so
// filtering in one session never changes another.
func (a *Atlas) NewController(scene *ui.Scene) *view.Controller {
	controls := ui.NewControls(scene, a.Mappings, a.Colours)
	return view.New(scene, controls, cluster.NewPair(a.Sets.National), cluster.NewPair(a.Sets.Regional), a.Views)
}

package atlas_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/ui"
	"github.com/woozymasta/edumap/internal/view"
)

const establishments = `{"entities": [
  {"entity": "1", "reference": "a", "point": "POINT(-1.9 52.5)", "educational-establishment-type": "1", "local-authority-district": "E08000025"},
  {"entity": "2", "reference": "b", "point": "POINT(-1.5 52.4)", "educational-establishment-type": "1", "local-authority-district": "E08000026"},
  {"entity": "3", "reference": "c", "point": "", "educational-establishment-type": "5", "local-authority-district": "E08000025"},
  {"entity": "4", "reference": "d", "point": "POINT(-1.8 52.6)", "educational-establishment-type": "2", "local-authority-district": "E08000025"}
]}`

const mappings = `{"educational-establishment-type": {"1": "Community school", "2": "Voluntary aided school"}}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	est := filepath.Join(dir, "educational_establishment.json")
	maps := filepath.Join(dir, "school_code_mappings.json")
	if err := os.WriteFile(est, []byte(establishments), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(maps, []byte(mappings), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Dataset: config.Dataset{Format: "json", Establishments: est, Mappings: maps}}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoad(t *testing.T) {
	a, err := atlas.Load(context.Background(), testConfig(t), colour.NewPalette(nil))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(a.Markers) != 3 || a.Skipped != 1 {
		t.Fatalf("markers=%d skipped=%d", len(a.Markers), a.Skipped)
	}
	if a.Sets.National.Len() != 3 || a.Sets.Regional.Len() != 2 {
		t.Fatalf("national=%d regional=%d", a.Sets.National.Len(), a.Sets.Regional.Len())
	}
	if _, ok := a.Colours.Lookup("5"); !ok {
		t.Fatalf("skipped record's type must still have a colour")
	}

	m, ok := a.Marker(a.Markers[0].ID)
	if !ok || m != a.Markers[0] {
		t.Fatalf("marker lookup failed")
	}
}

func TestLoad_BadFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Format = "csv"
	if _, err := atlas.Load(context.Background(), cfg, colour.NewPalette(nil)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSelect(t *testing.T) {
	a, err := atlas.Load(context.Background(), testConfig(t), colour.NewPalette(nil))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	tests := []struct {
		v      view.Name
		filter string
		want   int
	}{
		{view.National, ui.All, 3},
		{view.National, "", 3},
		{view.National, "1", 2},
		{view.Regional, "1", 1},
		{view.Regional, "2", 1},
		{view.Regional, "9", 0},
	}
	for _, tt := range tests {
		if got := a.Select(tt.v, tt.filter); len(got) != tt.want {
			t.Fatalf("%s/%s: got %d markers, want %d", tt.v, tt.filter, len(got), tt.want)
		}
	}

	fc := atlas.FeatureCollection(a.Select(view.Regional, ui.All))
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection: %+v", fc)
	}
}

func TestNewController_IndependentClusters(t *testing.T) {
	a, err := atlas.Load(context.Background(), testConfig(t), colour.NewPalette(nil))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	s1, s2 := ui.NewScene(), ui.NewScene()
	c1, c2 := a.NewController(s1), a.NewController(s2)

	if err := c1.Filter("2"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(s1.Snapshot().Markers) != 1 {
		t.Fatalf("first scene must be filtered")
	}
	if len(s2.Snapshot().Markers) != 3 {
		t.Fatalf("second scene must be untouched")
	}
	if c1.ActivePair().Set != c2.ActivePair().Set {
		t.Fatalf("marker-sets are shared between controllers")
	}
}

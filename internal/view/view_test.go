package view_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/woozymasta/edumap/internal/cluster"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/dataset"
	"github.com/woozymasta/edumap/internal/geo"
	"github.com/woozymasta/edumap/internal/marker"
	"github.com/woozymasta/edumap/internal/ui"
	"github.com/woozymasta/edumap/internal/view"
)

type fixture struct {
	scene    *ui.Scene
	ctrl     *view.Controller
	national *cluster.Pair
	regional *cluster.Pair
	views    config.Views
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := config.Config{}
	cfg.ApplyDefaults()

	tbl := colour.NewTable(colour.NewPalette(nil))
	mappings := dataset.Mappings{Types: map[string]string{"1": "Community school"}}
	b := marker.NewBuilder(mappings, tbl, cfg.Links)

	records := []dataset.Record{
		{TypeCode: "1", District: "E08000025"},
		{TypeCode: "2", District: "E08000026"},
		{TypeCode: "10", District: "E08000026"},
		{TypeCode: "3", District: "E08000025"},
		{TypeCode: "1", District: "E08000001"},
	}
	for i := range records {
		records[i].Position = geo.Position{Lon: -1.9, Lat: 52.5}
		records[i].HasPosition = true
	}
	markers, _ := b.BuildAll(records)
	sets := cluster.Manager{District: cfg.Region.District}.Partition(markers)

	scene := ui.NewScene()
	national, regional := cluster.NewPair(sets.National), cluster.NewPair(sets.Regional)
	ctrl := view.New(scene, ui.NewControls(scene, mappings, tbl), national, regional, cfg.Views)

	return fixture{scene: scene, ctrl: ctrl, national: national, regional: regional, views: cfg.Views}
}

func TestNew_InitialState(t *testing.T) {
	f := newFixture(t)

	if f.ctrl.Active() != view.National || f.ctrl.ActivePair() != f.national {
		t.Fatalf("initial view must be national")
	}
	if layers := f.scene.Layers(); len(layers) != 1 || layers[0] != f.national.Cluster {
		t.Fatalf("national cluster must be the only layer")
	}

	snap := f.scene.Snapshot()
	if snap.Zoom != f.views.National.Zoom || snap.Center != f.views.National.Center {
		t.Fatalf("unexpected camera: %+v", snap)
	}
	if len(snap.Markers) != 5 {
		t.Fatalf("expected 5 visible markers, got %v", snap.Markers)
	}

	toggles := f.scene.ControlsOf(ui.KindToggle)
	if len(toggles) != 1 || toggles[0].Position != ui.TopRight {
		t.Fatalf("expected one top-right toggle, got %+v", toggles)
	}
	if got := toggles[0].Options; got[0].Label != "England" || got[1].Label != "Birmingham Only" {
		t.Fatalf("unexpected toggle options: %+v", got)
	}
	if got := f.ctrl.Controls().Filter().Values(); !reflect.DeepEqual(got, []string{ui.All, "1", "2", "3", "10"}) {
		t.Fatalf("unexpected filter: %v", got)
	}
}

func TestSelect_Regional(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.Select(view.Regional); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if layers := f.scene.Layers(); len(layers) != 1 || layers[0] != f.regional.Cluster {
		t.Fatalf("regional cluster must replace the national one")
	}
	snap := f.scene.Snapshot()
	if snap.Zoom != 11 || len(snap.Markers) != 2 {
		t.Fatalf("unexpected regional scene: zoom=%d markers=%v", snap.Zoom, snap.Markers)
	}
	if got := f.ctrl.Controls().Legend().Values(); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("legend must follow the regional set: %v", got)
	}
	if len(f.scene.ControlsOf(ui.KindLegend)) != 1 || len(f.scene.ControlsOf(ui.KindFilter)) != 1 {
		t.Fatalf("old controls not removed")
	}
	if f.scene.ControlsOf(ui.KindToggle)[0].Selected != string(view.Regional) {
		t.Fatalf("toggle selection not updated")
	}
}

func TestSelect_ToggleTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)

	beforeSet := f.ctrl.ActivePair().Set
	beforeLegend := f.ctrl.Controls().Legend().Values()
	beforeFilter := f.ctrl.Controls().Filter().Values()
	beforeMarkers := f.scene.Snapshot().Markers

	_ = f.ctrl.Select(view.Regional)
	_ = f.ctrl.Select(view.National)

	if f.ctrl.ActivePair().Set != beforeSet {
		t.Fatalf("marker-set reference changed")
	}
	if !reflect.DeepEqual(f.ctrl.Controls().Legend().Values(), beforeLegend) {
		t.Fatalf("legend changed")
	}
	if !reflect.DeepEqual(f.ctrl.Controls().Filter().Values(), beforeFilter) {
		t.Fatalf("filter changed")
	}
	if !reflect.DeepEqual(f.scene.Snapshot().Markers, beforeMarkers) {
		t.Fatalf("visible markers changed")
	}
}

func TestSelect_ResetsStaleFilter(t *testing.T) {
	f := newFixture(t)

	_ = f.ctrl.Filter("2")
	_ = f.ctrl.Select(view.Regional)
	_ = f.ctrl.Select(view.National)

	if f.national.Cluster.Len() != f.national.Set.Len() {
		t.Fatalf("returning to national must show the whole set, got %d", f.national.Cluster.Len())
	}
	if f.ctrl.Controls().Filter().Selected != ui.All {
		t.Fatalf("filter must read All after a view change")
	}
}

func TestFilter(t *testing.T) {
	f := newFixture(t)

	_ = f.ctrl.Filter("1")
	if got := f.scene.Snapshot().Markers; len(got) != 2 {
		t.Fatalf("filter 1 in national view: %v", got)
	}

	_ = f.ctrl.Select(view.Regional)
	_ = f.ctrl.Filter("3")
	if got := f.regional.Cluster.Markers(); len(got) != 1 || got[0].TypeCode != "3" {
		t.Fatalf("filter 3 in regional view: %v", got)
	}

	_ = f.ctrl.Filter(ui.All)
	if f.regional.Cluster.Len() != 2 {
		t.Fatalf("All in regional view: %d", f.regional.Cluster.Len())
	}

	// "2" only exists nationally
	if err := f.ctrl.Filter("2"); !errors.Is(err, ui.ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
	if f.regional.Cluster.Len() != 2 {
		t.Fatalf("rejected filter changed the cluster: %d", f.regional.Cluster.Len())
	}
}

func TestParseAndUnknown(t *testing.T) {
	for in, want := range map[string]view.Name{
		"national": view.National, "all": view.National,
		"regional": view.Regional, "brum": view.Regional,
	} {
		got, err := view.Parse(in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := view.Parse("scotland"); !errors.Is(err, view.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}

	f := newFixture(t)
	if err := f.ctrl.Select("scotland"); !errors.Is(err, view.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
	if f.ctrl.Active() != view.National {
		t.Fatalf("failed select must not change the view")
	}
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/metrics"
	"github.com/woozymasta/edumap/internal/server"
	"github.com/woozymasta/edumap/internal/session"
	"github.com/woozymasta/edumap/internal/tiles"
	"github.com/woozymasta/edumap/internal/view"
)

const establishments = `{"entities": [
  {"entity": "1", "reference": "a", "name": "Alpha", "point": "POINT(-1.9 52.5)", "educational-establishment-type": "1", "local-authority-district": "E08000025"},
  {"entity": "2", "reference": "b", "name": "Beta", "point": "POINT(-1.5 52.4)", "educational-establishment-type": "1", "local-authority-district": "E08000026"},
  {"entity": "3", "reference": "c", "name": "Gamma", "point": "POINT(-1.8 52.6)", "educational-establishment-type": "2", "local-authority-district": "E08000025"}
]}`

const mappings = `{"educational-establishment-type": {"1": "Community school", "2": "Voluntary aided school"}}`

type sceneState struct {
	View     view.Name `json:"view"`
	Filter   string    `json:"filter"`
	Markers  []int     `json:"markers"`
	Zoom     int       `json:"zoom"`
	Controls []struct {
		Kind     string `json:"kind"`
		Selected string `json:"selected"`
	} `json:"controls"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	est := filepath.Join(dir, "establishments.json")
	maps := filepath.Join(dir, "mappings.json")
	if err := os.WriteFile(est, []byte(establishments), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(maps, []byte(mappings), 0o644); err != nil {
		t.Fatal(err)
	}

	upstream := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Dataset: config.Dataset{Format: "json", Establishments: est, Mappings: maps},
		Tiles:   config.Tiles{Upstream: upstream.URL + "/{z}/{x}/{y}.png", CacheDir: t.TempDir(), RPS: 1000},
	}
	cfg.ApplyDefaults()

	a, err := atlas.Load(context.Background(), cfg, colour.NewPalette(nil))
	if err != nil {
		t.Fatalf("load atlas: %v", err)
	}
	store, err := session.NewStore(a, 8)
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	tc, err := tiles.New(cfg.Tiles)
	if err != nil {
		t.Fatalf("tile cache: %v", err)
	}

	srv, err := server.NewServerContext(cfg, a, store, tc, metrics.InitRegistry())
	if err != nil {
		t.Fatalf("server context: %v", err)
	}

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func decodeScene(t *testing.T, resp *http.Response) sceneState {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var st sceneState
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	return st
}

func post(t *testing.T, c *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := c.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestIndex_ETag(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if resp.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("status=%d etag=%q", resp.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestConfig(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got struct {
		Views   map[string]config.View `json:"views"`
		MaxZoom int                    `json:"maxZoom"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.MaxZoom != config.DefaultMaxZoom {
		t.Fatalf("maxZoom = %d", got.MaxZoom)
	}
	if got.Views["regional"].Label != "Birmingham Only" || got.Views["national"].Zoom != 6 {
		t.Fatalf("unexpected views: %+v", got.Views)
	}
}

func TestMarkers(t *testing.T) {
	ts := newServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?view=regional", 2},
		{"?view=national&type=1", 2},
		{"?view=regional&type=1", 1},
		{"?type=9", 0},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + "/api/markers.geojson" + tt.query)
		if err != nil {
			t.Fatal(err)
		}
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}
		err = json.NewDecoder(resp.Body).Decode(&fc)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("%s: %v", tt.query, err)
		}
		if len(fc.Features) != tt.want {
			t.Fatalf("%s: got %d features, want %d", tt.query, len(fc.Features), tt.want)
		}
	}

	resp, err := http.Get(ts.URL + "/api/markers.geojson?view=moon")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScene_Flow(t *testing.T) {
	ts := newServer(t)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/api/scene")
	if err != nil {
		t.Fatal(err)
	}
	st := decodeScene(t, resp)
	if st.View != view.National || len(st.Markers) != 3 || st.Zoom != 6 {
		t.Fatalf("unexpected initial scene: %+v", st)
	}

	st = decodeScene(t, post(t, c, ts.URL+"/api/scene/filter", `{"type":"1"}`))
	if len(st.Markers) != 2 || st.Filter != "1" {
		t.Fatalf("filter not applied: %+v", st)
	}

	st = decodeScene(t, post(t, c, ts.URL+"/api/scene/view", `{"view":"regional"}`))
	if st.View != view.Regional || len(st.Markers) != 2 || st.Zoom != 11 {
		t.Fatalf("unexpected regional scene: %+v", st)
	}
	for _, ctl := range st.Controls {
		if ctl.Kind == "filter" && ctl.Selected != "All" {
			t.Fatalf("filter must reset after a view switch, got %q", ctl.Selected)
		}
	}

	// same cookie, same session
	resp, err = c.Get(ts.URL + "/api/scene")
	if err != nil {
		t.Fatal(err)
	}
	if st = decodeScene(t, resp); st.View != view.Regional {
		t.Fatalf("session lost: %+v", st)
	}

	// a client without the cookie starts fresh
	resp, err = newClient(t).Get(ts.URL + "/api/scene")
	if err != nil {
		t.Fatal(err)
	}
	if st = decodeScene(t, resp); st.View != view.National {
		t.Fatalf("sessions leaked: %+v", st)
	}
}

func TestScene_BadRequests(t *testing.T) {
	ts := newServer(t)
	c := newClient(t)

	tests := []struct {
		path string
		body string
	}{
		{"/api/scene/view", `{"view":"moon"}`},
		{"/api/scene/view", `not json`},
		{"/api/scene/filter", `{`},
		{"/api/scene/filter", `{"type":"9"}`},
	}
	for _, tt := range tests {
		resp := post(t, c, ts.URL+tt.path, tt.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tt.path, tt.body, resp.StatusCode)
		}
	}
}

func TestSwatch(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/api/swatch/1.webp")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/webp" {
		t.Fatalf("status=%d type=%q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, err = http.Get(ts.URL + "/api/swatch/9.webp")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTile_Fallback(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/tiles/3/4/2.webp")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/webp" {
		t.Fatalf("expected transparent tile, got status=%d", resp.StatusCode)
	}

	for _, path := range []string{"/tiles/30/0/0.webp", "/tiles/a/0/0.webp"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestMetrics(t *testing.T) {
	ts := newServer(t)

	if resp, err := http.Get(ts.URL + "/api/config"); err == nil {
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "edumap_http_requests_total") {
		t.Fatalf("request counter missing from metrics output")
	}
}

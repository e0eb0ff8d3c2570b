// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/metrics"
	"github.com/woozymasta/edumap/internal/session"
	"github.com/woozymasta/edumap/internal/tiles"
	"github.com/woozymasta/edumap/internal/ui"
	"github.com/woozymasta/edumap/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "edumap_session"

// maxBody limits POST payloads; they only carry a single short value.
const maxBody = 4 << 10

// Routes returns the router for all endpoints.
func (s *ServerContext) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)

	r.Get("/", s.HandleIndex)
	r.Get("/favicon.ico", s.HandleFavicon)
	r.Handle("/metrics", metrics.Handler(s.Registry))

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.HandleConfig)
		r.Get("/markers.geojson", s.HandleMarkers)
		r.Get("/swatch/{code}.webp", s.HandleSwatch)

		r.Get("/scene", s.HandleScene)
		r.Post("/scene/view", s.HandleSceneView)
		r.Post("/scene/filter", s.HandleSceneFilter)
	})

	r.Get("/tiles/{z}/{x}/{y}.webp", s.HandleTile)

	return r
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveBytes(w, r, s.IndexHTML, "text/html; charset=utf-8")
}

type configResponse struct {
	Views       map[view.Name]config.View `json:"views"`
	Attribution string                    `json:"attribution"`
	District    string                    `json:"district"`
	MaxZoom     int                       `json:"maxZoom"`
}

// HandleConfig serves the settings the page needs before the first scene.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Views: map[view.Name]config.View{
			view.National: s.Config.Views.National,
			view.Regional: s.Config.Views.Regional,
		},
		Attribution: s.Config.Tiles.Attribution,
		District:    s.Config.Region.District,
		MaxZoom:     s.Tiles.MaxZoom(),
	})
}

// HandleMarkers serves markers as GeoJSON. Without query parameters it returns
// every marker; ?view= and ?type= export what a fresh view with that filter shows.
func (s *ServerContext) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("view") && !q.Has("type") {
		s.serveBytes(w, r, s.MarkersJSON, "application/geo+json")
		return
	}

	v := view.National
	if raw := q.Get("view"); raw != "" {
		parsed, err := view.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v = parsed
	}

	fc := atlas.FeatureCollection(s.Atlas.Select(v, q.Get("type")))
	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// HandleSwatch serves the legend swatch of a type code.
func (s *ServerContext) HandleSwatch(w http.ResponseWriter, r *http.Request) {
	data, ok := s.Swatches[chi.URLParam(r, "code")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// HandleScene returns the caller's scene, starting a session when needed.
func (s *ServerContext) HandleScene(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, sess.State())
}

// HandleSceneView switches the caller's view: {"view": "regional"}.
func (s *ServerContext) HandleSceneView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := view.Parse(req.View)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := s.session(w, r).SelectView(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleSceneFilter applies a type filter: {"type": "All"} or {"type": "1"}.
// Codes the active view does not have are rejected with 400.
func (s *ServerContext) HandleSceneFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = ui.All
	}

	st, err := s.session(w, r).Filter(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleTile serves a cached or freshly fetched map tile. Tiles upstream
// cannot provide are answered with a transparent tile.
func (s *ServerContext) HandleTile(w http.ResponseWriter, r *http.Request) {
	var coord tiles.TileCoordinate
	var err1, err2, err3 error
	coord.Z, err1 = strconv.Atoi(chi.URLParam(r, "z"))
	coord.X, err2 = strconv.Atoi(chi.URLParam(r, "x"))
	coord.Y, err3 = strconv.Atoi(chi.URLParam(r, "y"))
	if err1 != nil || err2 != nil || err3 != nil {
		http.NotFound(w, r)
		return
	}

	data, err := s.Tiles.Get(r.Context(), coord)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(data)

	case errors.Is(err, tiles.ErrOutOfRange):
		http.NotFound(w, r)

	default:
		if !errors.Is(err, tiles.ErrNotFound) {
			log.Warn().
				Err(err).
				Int("z", coord.Z).Int("x", coord.X).Int("y", coord.Y).
				Msg("Failed to fetch tile")
		}
		metrics.ObserveTile("fallback")

		// cache transparent tile
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(s.Tiles.Blank())
	}
}

// session returns the caller's session, creating it and setting the cookie
// when the request carries no known ID.
func (s *ServerContext) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		log.Debug().Str("session", sess.ID()).Msg("Session started")
	}

	return sess
}

// serveBytes writes a static payload with a content hash ETag.
func (s *ServerContext) serveBytes(w http.ResponseWriter, r *http.Request, data []byte, contentType string) {
	h := fnv.New64a()
	_, _ = h.Write(data)
	etag := fmt.Sprintf(`"%x"`, h.Sum64())

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		http.Error(w, "expected application/json", http.StatusUnsupportedMediaType)
		return false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

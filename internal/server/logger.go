package server

import (
	"net/http"
	"time"

	"github.com/woozymasta/edumap/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// RequestLogger is a middleware to log and count HTTP requests.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		dur := time.Since(start)
		metrics.ObserveHTTP(route, r.Method, ww.statusCode, dur)

		// tiles are too frequent for info level
		ev := log.Info()
		if route == "/tiles/{z}/{x}/{y}.webp" {
			ev = log.Debug()
		}
		ev.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", dur).
			Msg("Request processed")
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

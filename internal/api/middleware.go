package api

import (
	"log"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/ComputingTeachers/language-reference/internal/config"
)

// WithDefaults wraps a handler with the standard middleware stack:
// request logging, a per-request timeout, and gzip response compression.
func WithDefaults(h http.Handler, cfg *config.Config) http.Handler {
	return LoggingMiddleware(TimeoutMiddleware(gzhttp.GzipHandler(h), cfg.RequestTimeout))
}

// TimeoutMiddleware aborts requests that exceed the configured timeout.
func TimeoutMiddleware(h http.Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		return h
	}
	return http.TimeoutHandler(h, timeout, "request timed out")
}

// LoggingMiddleware logs each request with its status and duration.
func LoggingMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(lw, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, lw.status, time.Since(start))
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessera-viz/tessera/internal/logging"
)

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger emits one structured log line per handled request. Client
// errors log at warn, server errors at error, the rest at debug to keep the
// tile path quiet under load.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		var event *zerolog.Event
		switch {
		case sw.status >= 500:
			event = logging.Error()
		case sw.status >= 400:
			event = logging.Warn()
		default:
			event = logging.Debug()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("request_id", GetRequestID(r.Context())).
			Str("remote", r.RemoteAddr).
			Msg("Request handled")
	})
}

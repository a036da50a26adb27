package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"replyai/internal/logging"
)

const headerRequestID = "X-Request-ID"

// withRequestID reuses an incoming X-Request-ID or assigns a new one, echoes
// it on the response and stores it in the request context.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		rw.Header().Set(headerRequestID, id)
		next.ServeHTTP(rw, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logging.FromContext(r.Context(), s.logger).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
		if s.replyMetrics != nil {
			s.replyMetrics.HTTPRequest(route(r), rec.status)
		}
	})
}

// route keeps metric label cardinality bounded.
func route(r *http.Request) string {
	switch r.URL.Path {
	case "/api/generate-reply", "/status", "/metrics":
		return r.URL.Path
	default:
		return "other"
	}
}

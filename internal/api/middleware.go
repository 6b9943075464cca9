package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fjacquet/sms-ledger/internal/logging"
)

// statusResponseWriter captures the status code
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)
		endpoint := getEndpoint(r)
		s.metrics.RecordHTTPRequest(r.Method, endpoint, srw.statusCode, duration)
		s.logger.Debug("Request served",
			logging.F(logging.FieldRoute, endpoint),
			logging.F(logging.FieldStatus, srw.statusCode),
			logging.F(logging.FieldDuration, duration.String()))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Handler panicked",
					logging.F(logging.FieldRoute, r.URL.Path),
					logging.F(logging.FieldError, fmt.Sprint(rec)))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// getEndpoint returns the route template so ids never explode label cardinality.
func getEndpoint(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}
	pathTemplate, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}
	return pathTemplate
}

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/metrics"
)

// requestLogger is middleware that logs HTTP requests and records their
// metrics.
type requestLogger struct {
	handler http.Handler
	logger  *zap.Logger
	enabled bool
}

// responseCapture wraps http.ResponseWriter to capture status code
type responseCapture struct {
	http.ResponseWriter
	status int
}

func (rc *responseCapture) WriteHeader(code int) {
	if rc.status == 0 {
		rc.status = code
	}
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	if rc.status == 0 {
		rc.status = http.StatusOK
	}
	return rc.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rc *responseCapture) Unwrap() http.ResponseWriter {
	return rc.ResponseWriter
}

// newRequestLogger creates request logging middleware. When enabled is
// false only metrics are recorded.
func newRequestLogger(handler http.Handler, logger *zap.Logger, enabled bool) *requestLogger {
	return &requestLogger{
		handler: handler,
		logger:  logger,
		enabled: enabled,
	}
}

func (rl *requestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Wrap response writer to capture status
	rc := &responseCapture{ResponseWriter: w}
	rl.handler.ServeHTTP(rc, r)

	duration := time.Since(start)
	if rc.status == 0 {
		rc.status = http.StatusOK
	}

	// The mux records the matched pattern on the request.
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	metrics.ObserveRequest(r.Method, route, rc.status, duration)

	if !rl.enabled {
		return
	}
	rl.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rc.status),
		zap.Duration("duration", duration),
		zap.String("client_ip", extractIP(r.RemoteAddr)),
		zap.String("user_agent", r.UserAgent()),
	)
}

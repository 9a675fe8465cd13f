package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/esime/ielec/config"
)

// exposedHeaders are readable by cross-origin callers of report downloads
// and rate limited endpoints.
const exposedHeaders = "Content-Disposition, X-Archive-Location, Retry-After"

// newCORS answers preflight requests and adds CORS headers for allowed
// origins. Without configured origins it returns next unchanged. Requests
// from other origins pass through without headers, so browsers block them.
func newCORS(next http.Handler, cfg config.CORSConfig) http.Handler {
	if len(cfg.Origins) == 0 {
		return next
	}
	wildcard := cfg.Origins.Contains("*")
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{"GET", "HEAD", "POST"}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !(wildcard || cfg.Origins.Contains(origin)) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		switch {
		case cfg.Credentials:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		default:
			h.Set("Access-Control-Allow-Origin", origin)
		}
		h.Set("Access-Control-Expose-Headers", exposedHeaders)
		h.Add("Vary", "Origin")

		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
		if len(cfg.Headers) > 0 {
			h.Set("Access-Control-Allow-Headers", strings.Join(cfg.Headers, ", "))
		} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
			h.Set("Access-Control-Allow-Headers", requested)
		}
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

package server

import (
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/esime/ielec/config"
)

// newSecurityHeaders sets the configured security headers on every
// response. HSTS is left out in development, where the server speaks
// plain HTTP.
func newSecurityHeaders(next http.Handler, cfg config.SecurityConfig, dev bool) http.Handler {
	static := map[string]string{
		"X-Content-Type-Options":  cfg.ContentTypeOptions,
		"X-Frame-Options":         cfg.FrameOptions,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Content-Security-Policy": cfg.CSP,
	}
	if !dev && cfg.HSTS.Enabled {
		hsts := "max-age=" + cfg.HSTS.MaxAge
		if cfg.HSTS.IncludeSubDomains {
			hsts += "; includeSubDomains"
		}
		static["Strict-Transport-Security"] = hsts
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range static {
			if value != "" {
				h.Set(name, value)
			}
		}
		// Calculations and history are per user.
		if dev || strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// newProxyAware replaces RemoteAddr with the forwarded client address
// when requests come through a trusted proxy. The original address is
// kept in X-Original-Remote-Addr.
func newProxyAware(next http.Handler, cfg config.ProxyConfig) http.Handler {
	if !cfg.Trusted {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := forwardedFor(r, cfg); ip != "" {
			r.Header.Set("X-Original-Remote-Addr", r.RemoteAddr)
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

// forwardedFor returns the client address named by X-Forwarded-For (its
// leftmost entry) or X-Real-IP, or "" when the headers are absent or the
// direct peer is not a trusted proxy.
func forwardedFor(r *http.Request, cfg config.ProxyConfig) string {
	if !cfg.Trusted {
		return ""
	}
	if len(cfg.TrustedIPs) > 0 && !slices.Contains(cfg.TrustedIPs, extractIP(r.RemoteAddr)) {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

// extractIP strips the port from an address.
func extractIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// ClientIP returns the address rate limits and logs are keyed on.
func ClientIP(r *http.Request, cfg config.ProxyConfig) string {
	if ip := forwardedFor(r, cfg); ip != "" {
		return ip
	}
	return extractIP(r.RemoteAddr)
}

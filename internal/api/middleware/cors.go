package middleware

import (
	"net/http"
	"strings"

	"hookwatch/internal/platform/config"
)

// CORSMiddleware adds permissive CORS headers so the dashboard can call the
// registration endpoint cross-origin. Preflight requests are answered with
// 204 by the router's global OPTIONS handler, which also runs through here.
type CORSMiddleware struct {
	origins string
	methods string
	headers string
}

func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	m := &CORSMiddleware{
		origins: strings.Join(cfg.AllowedOrigins, ", "),
		methods: strings.Join(cfg.AllowedMethods, ", "),
		headers: strings.Join(cfg.AllowedHeaders, ", "),
	}
	if m.origins == "" {
		m.origins = "*"
	}
	if m.methods == "" {
		m.methods = "POST, OPTIONS"
	}
	if m.headers == "" {
		m.headers = "Content-Type, Authorization"
	}
	return m
}

func (m *CORSMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.SetHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (m *CORSMiddleware) SetHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", m.origins)
	w.Header().Set("Access-Control-Allow-Methods", m.methods)
	w.Header().Set("Access-Control-Allow-Headers", m.headers)
}

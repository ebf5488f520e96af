package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"

	"github.com/handsomefox/showboard/internal/metrics"
)

type RouterOptions struct {
	Logger             *slog.Logger
	LogLevel           slog.Level
	CORSOrigins        []string
	RateLimitPerMinute int
}

// NewRouter mounts the API behind request logging, CORS and per-IP rate limiting.
func (h *Handler) NewRouter(opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:         opts.LogLevel,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(req *http.Request, _ int) bool {
			return req.URL.Path == "/healthz" || req.URL.Path == "/metrics"
		},
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
	}

	r.Method(http.MethodGet, "/healthz", Adapt(h.getHealth))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	h.RegisterRoutes(r)

	return r
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return &Error{Status: http.StatusServiceUnavailable, Message: "database unavailable"}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

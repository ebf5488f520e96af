// Package handlers wires HTTP routing and API handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/showboard/internal/auth"
	"github.com/handsomefox/showboard/internal/shows"
	"github.com/handsomefox/showboard/internal/store"
)

type Handler struct {
	store  *store.Store
	shows  *shows.Service
	tokens *auth.TokenManager
}

type Config struct {
	Store  *store.Store
	Shows  *shows.Service
	Tokens *auth.TokenManager
}

func New(cfg *Config) (*Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Shows == nil {
		return nil, errors.New("shows service is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token manager is required")
	}

	return &Handler{
		store:  cfg.Store,
		shows:  cfg.Shows,
		tokens: cfg.Tokens,
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method(http.MethodPost, "/auth/login", Adapt(h.postLogin))

	r.Route("/article", func(r chi.Router) {
		r.Method(http.MethodGet, "/", Adapt(h.getShows))
		r.Method(http.MethodGet, "/popular", Adapt(h.getPopular))
		r.Method(http.MethodGet, "/byGenre/{genre}", Adapt(h.getByGenre))
		r.Method(http.MethodGet, "/byCountry/{id}", Adapt(h.getByCountry))
		r.Method(http.MethodGet, "/actor/{id:[0-9]+}", Adapt(h.getActor))
		r.Method(http.MethodGet, "/{id:[0-9]+}", Adapt(h.getShow))

		r.Method(http.MethodGet, "/stored", Adapt(h.getArticles))
		r.Method(http.MethodGet, "/stored/{id:[0-9]+}", Adapt(h.getArticle))

		r.Group(func(r chi.Router) {
			r.Use(h.MiddlewareRequireAuth)
			r.Use(h.MiddlewareRequireRole(auth.RoleAdmin))

			r.Method(http.MethodPost, "/", Adapt(h.postArticle))
			r.Method(http.MethodPut, "/{id:[0-9]+}", Adapt(h.putArticle))
			r.Method(http.MethodDelete, "/{id:[0-9]+}", Adapt(h.deleteArticle))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.MiddlewareRequireAuth)

		r.Method(http.MethodPost, "/user/reset-password", Adapt(h.postResetPassword))
	})
}

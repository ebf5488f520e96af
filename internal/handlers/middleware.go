package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/showboard/internal/auth"
)

// MiddlewareRequireAuth verifies the bearer token and stores the caller identity.
func (h *Handler) MiddlewareRequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			msg := "invalid bearer token"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "missing bearer token"
			}
			writeJSON(w, http.StatusUnauthorized, &errorResponse{Error: msg})
			return
		}
		id, err := h.tokens.Parse(token)
		if err != nil {
			slog.Debug("auth: token rejected", slog.String("remote", r.RemoteAddr), slog.Any("err", err))
			writeJSON(w, http.StatusUnauthorized, &errorResponse{Error: "invalid bearer token"})
			return
		}
		httplog.SetAttrs(r.Context(), slog.String("user", id.Subject))
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// MiddlewareRequireRole must run after MiddlewareRequireAuth.
func (h *Handler) MiddlewareRequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, &errorResponse{Error: "missing bearer token"})
				return
			}
			if !auth.HasRole(id, role) {
				slog.Warn("auth: insufficient role",
					slog.String("user", id.Subject),
					slog.String("role", string(id.Role)),
					slog.String("required", string(role)))
				writeJSON(w, http.StatusForbidden, &errorResponse{Error: "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/handsomefox/showboard/internal/auth"
	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/validation"
)

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func (h *Handler) postLogin(w http.ResponseWriter, r *http.Request) error {
	var req validation.LoginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		return err
	}
	if err := req.Validate().Err(); err != nil {
		return err
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if isNoRows(err) {
			slog.Warn("login: unknown user", slog.String("remote", r.RemoteAddr))
			return unauthorized(auth.ErrBadCredentials.Error())
		}
		return internal(err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		slog.Warn("login: invalid password", slog.String("remote", r.RemoteAddr))
		return unauthorized(err.Error())
	}

	role, ok := auth.ParseRole(user.Role)
	if !ok {
		return internal(errors.New("user has unknown role " + user.Role))
	}
	token, err := h.tokens.Issue(auth.Identity{Subject: user.Email, Role: role})
	if err != nil {
		return internal(err)
	}

	writeJSON(w, http.StatusOK, &loginResponse{Token: token, Role: string(role)})
	return nil
}

// postResetPassword lets a caller change their own password; admins may change anyone's.
func (h *Handler) postResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req validation.ResetPasswordRequest
	if err := decodeRequest(w, r, &req); err != nil {
		return err
	}
	if err := req.Validate().Err(); err != nil {
		return err
	}

	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return unauthorized("missing bearer token")
	}
	if !strings.EqualFold(id.Subject, req.Email) && !auth.HasRole(id, auth.RoleAdmin) {
		return forbidden("forbidden")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return internal(err)
	}
	if err := h.store.UpdatePassword(r.Context(), req.Email, hash); err != nil {
		if isNoRows(err) {
			return notFound("not found")
		}
		slog.Warn("reset password: update failed", logger.Error(err))
		return internal(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/shows"
	"github.com/handsomefox/showboard/internal/tvmaze"
	"github.com/handsomefox/showboard/internal/validation"
)

type HandlerWithErr func(w http.ResponseWriter, r *http.Request) error

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message + " code=" + strconv.FormatInt(int64(e.Status), 10)
}

type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func Adapt(h HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			status, body := errorFor(err)
			if status >= http.StatusInternalServerError {
				slog.Error("request failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", status),
					logger.Error(err))
			}
			writeJSON(w, status, body)
		}
	})
}

func errorFor(err error) (int, *errorResponse) {
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Status, &errorResponse{Error: statusErr.Message}
	}

	var invalid validation.Result
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, &errorResponse{Error: "validation failed", Fields: invalid.Fields}
	}

	if errors.Is(err, shows.ErrCreditLookup) {
		return http.StatusBadGateway, &errorResponse{Error: "upstream unavailable: " + err.Error()}
	}

	var upstream *tvmaze.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.NotFound() {
			return http.StatusNotFound, &errorResponse{Error: "not found"}
		}
		return http.StatusBadGateway, &errorResponse{Error: "upstream unavailable: " + upstream.Error()}
	}

	switch {
	case errors.Is(err, shows.ErrInvalidAmount):
		return http.StatusBadRequest, &errorResponse{Error: err.Error()}
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, &errorResponse{Error: "not found"}
	}
	return http.StatusInternalServerError, &errorResponse{Error: err.Error()}
}

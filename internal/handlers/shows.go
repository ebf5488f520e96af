package handlers

import (
	"net/http"

	"github.com/handsomefox/showboard/internal/shows"
)

func (h *Handler) getShows(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	amount, err := shows.ParseAmount(query.Get("amount"))
	if err != nil {
		return err
	}

	items, err := h.shows.List(r.Context(), query.Get("q"), amount)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (h *Handler) getShow(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("not found")
	}

	detail, err := h.shows.Detail(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, detail)
	return nil
}

func (h *Handler) getByGenre(w http.ResponseWriter, r *http.Request) error {
	genre := pathParam(r, "genre")
	if genre == "" {
		return badRequest("genre required")
	}
	amount, err := shows.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		return err
	}

	items, err := h.shows.ByGenre(r.Context(), genre, amount)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (h *Handler) getByCountry(w http.ResponseWriter, r *http.Request) error {
	code := pathParam(r, "id")
	if code == "" {
		return badRequest("country required")
	}
	amount, err := shows.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		return err
	}

	items, err := h.shows.ByCountry(r.Context(), code, amount)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

// getPopular ignores any amount the caller sends.
func (h *Handler) getPopular(w http.ResponseWriter, r *http.Request) error {
	items, err := h.shows.Popular(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (h *Handler) getActor(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("not found")
	}

	actor, err := h.shows.Actor(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, actor)
	return nil
}

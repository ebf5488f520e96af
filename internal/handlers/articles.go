package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/handsomefox/showboard/internal/auth"
	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/metrics"
	"github.com/handsomefox/showboard/internal/shows"
	"github.com/handsomefox/showboard/internal/store"
	"github.com/handsomefox/showboard/internal/validation"
)

type articleResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ShowID    *int64 `json:"show_id"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toArticleResponse(a *store.Article) *articleResponse {
	return &articleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		ShowID:    fromSQLNull(a.ShowID),
		Author:    a.Author,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toArticleResponses(items []store.Article) []*articleResponse {
	out := make([]*articleResponse, 0, len(items))
	for i := range items {
		out = append(out, toArticleResponse(&items[i]))
	}
	return out
}

func decodeArticle(w http.ResponseWriter, r *http.Request) (*validation.ArticleRequest, error) {
	var req validation.ArticleRequest
	if err := decodeRequest(w, r, &req); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if err := req.Validate().Err(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *Handler) getArticles(w http.ResponseWriter, r *http.Request) error {
	showID, err := optionalID(queryParam(r, "show_id"))
	if err != nil {
		return badRequest("invalid show_id")
	}
	amount, err := shows.ParseAmount(queryParam(r, "amount"))
	if err != nil {
		return err
	}

	filters := store.ArticleFilters{ShowID: showID}
	if amount.IsSet() {
		if amount.Value() == 0 {
			writeJSON(w, http.StatusOK, []*articleResponse{})
			return nil
		}
		filters.Limit = amount.Value()
	}

	items, err := h.store.ListArticles(r.Context(), filters)
	if err != nil {
		return internal(err)
	}
	writeJSON(w, http.StatusOK, toArticleResponses(items))
	return nil
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("not found")
	}

	article, err := h.store.GetArticle(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toArticleResponse(&article))
	return nil
}

func (h *Handler) postArticle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	req, err := decodeArticle(w, r)
	if err != nil {
		return err
	}
	id, _ := auth.IdentityFrom(ctx)

	created, err := h.store.CreateArticle(ctx, &store.Article{
		Title:  req.Title,
		Body:   req.Body,
		ShowID: toSQLNull(req.ShowID),
		Author: id.Subject,
	})
	if err != nil {
		metrics.ArticleMutationsTotal.WithLabelValues("create", "error").Inc()
		slog.Warn("article: create failed", logger.Error(err))
		return internal(err)
	}
	metrics.ArticleMutationsTotal.WithLabelValues("create", "ok").Inc()

	writeJSON(w, http.StatusCreated, toArticleResponse(&created))
	return nil
}

func (h *Handler) putArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("not found")
	}
	req, err := decodeArticle(w, r)
	if err != nil {
		return err
	}

	updated, err := h.store.UpdateArticle(r.Context(), id, store.ArticleUpdate{
		Title:  req.Title,
		Body:   req.Body,
		ShowID: toSQLNull(req.ShowID),
	})
	if err != nil {
		metrics.ArticleMutationsTotal.WithLabelValues("update", "error").Inc()
		return err
	}
	metrics.ArticleMutationsTotal.WithLabelValues("update", "ok").Inc()

	writeJSON(w, http.StatusOK, toArticleResponse(&updated))
	return nil
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("not found")
	}

	if err := h.store.DeleteArticle(r.Context(), id); err != nil {
		metrics.ArticleMutationsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	metrics.ArticleMutationsTotal.WithLabelValues("delete", "ok").Inc()

	w.WriteHeader(http.StatusNoContent)
	return nil
}

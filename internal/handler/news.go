package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/solodko/storefront/internal/domain/news"
)

// contentSourceHeader tells clients whether a news response came from the
// database or from the embedded seed fallback ("remote" or "seed"), so a
// degraded response is never mistaken for fresh data.
const contentSourceHeader = "X-Content-Source"

// newsResponse is the JSON shape of a news article. Gallery always leads
// with the primary image.
type newsResponse struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Summary string    `json:"summary"`
	Image   string    `json:"image"`
	Gallery []string  `json:"gallery"`
	Date    time.Time `json:"date"`
	Author  string    `json:"author"`
}

func (h *Handler) toNewsResponse(a news.Article) newsResponse {
	gallery := a.Gallery()
	resolved := make([]string, len(gallery))
	for i, img := range gallery {
		resolved[i] = h.images.ResolveURL(img)
	}
	return newsResponse{
		ID:      a.ID,
		Title:   a.Title,
		Content: a.Content,
		Summary: a.Summary,
		Image:   h.images.ResolveURL(a.Image),
		Gallery: resolved,
		Date:    a.Date,
		Author:  a.Author,
	}
}

func (h *Handler) listNews(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]newsResponse, len(result.Articles))
	for i, a := range result.Articles {
		out[i] = h.toNewsResponse(a)
	}
	w.Header().Set(contentSourceHeader, string(result.Source))
	h.writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getNewsArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")

	result, err := h.news.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "article not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.Header().Set(contentSourceHeader, string(result.Source))
	h.writeJSON(w, r, http.StatusOK, h.toNewsResponse(*result.Article))
}

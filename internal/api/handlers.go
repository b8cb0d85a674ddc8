package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bylinehq/byline/internal/apperr"
	"github.com/bylinehq/byline/internal/articleservice"
	"github.com/bylinehq/byline/internal/presenter"
)

// Handler holds API route handlers.
type Handler struct {
	svc *articleservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *articleservice.Service) *Handler {
	return &Handler{svc: svc}
}

// csvParam splits a comma-separated query parameter, dropping empty entries.
func csvParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ListArticles handles GET /articles.
//
// Query params: limit, offset, tag, sort (published_at|title|path),
// drafts=true to include unpublished articles. When only= or methods= is
// present the response carries serialized projections instead of list items.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	tag := q.Get("tag")
	sort := q.Get("sort")
	publishedOnly := q.Get("drafts") != "true"

	only := csvParam(r, "only")
	methods := csvParam(r, "methods")
	if len(only) > 0 || len(methods) > 0 {
		projections, err := h.svc.ProjectList(r.Context(), limit, offset, tag,
			presenter.Options{Only: only, Methods: methods})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"articles": projections})
		return
	}

	items, total, err := h.svc.ListArticles(r.Context(), limit, offset, tag, sort, publishedOnly)
	if err != nil {
		slog.Error("list articles failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": items,
		"total":    total,
	})
}

// GetArticle handles GET /articles/{username}/{slug}.
//
// With only= or methods= query params the response is the serialized
// projection of the selected fields and derived methods; otherwise the full
// detail representation is returned.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")
	if username == "" || slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("username and slug are required"))
		return
	}

	only := csvParam(r, "only")
	methods := csvParam(r, "methods")
	if len(only) > 0 || len(methods) > 0 {
		projection, err := h.svc.Project(r.Context(), username, slug,
			presenter.Options{Only: only, Methods: methods})
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody("not found"))
			} else {
				writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			}
			return
		}
		writeJSON(w, http.StatusOK, projection)
		return
	}

	detail, err := h.svc.GetArticle(r.Context(), username, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get article failed",
				slog.String("username", username),
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Package http exposes the service over a chi router.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"
	"github.com/JesusFern/BookLog-ELK-Stack/pkg/httputil"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/service"
)

// SearchHandler handles HTTP requests for the search endpoints.
type SearchHandler struct {
	search *service.SearchService
	sync   *service.SyncService
	logger *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(search *service.SearchService, sync *service.SyncService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		sync:   sync,
		logger: logger,
	}
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.search.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles GET /api/v1/search/suggest.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.search.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"suggestions": suggestions},
	})
}

// Related handles GET /api/v1/search/related/{id}.
func (h *SearchHandler) Related(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	docs, err := h.search.Related(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"results": docs},
	})
}

// Facets handles GET /api/v1/search/facets.
func (h *SearchHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.search.Facets(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: facets})
}

// Reindex handles POST /api/v1/search/reindex. It runs synchronously;
// concurrent invocations are rejected with a conflict.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	recreate := false
	if v := r.URL.Query().Get("recreate"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("recreate must be a boolean"), h.logger)
			return
		}
		recreate = parsed
	}

	report, err := h.sync.Reindex(r.Context(), recreate)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// parseSearchRequest validates and converts query parameters. Malformed
// numeric bounds fail here, before any store or index access.
func parseSearchRequest(r *http.Request) (domain.SearchRequest, error) {
	q := r.URL.Query()

	req := domain.SearchRequest{
		Query:   strings.TrimSpace(q.Get("query")),
		Genres:  splitCSV(q.Get("genres")),
		Formats: splitCSV(q.Get("formats")),
		Page:    1,
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return domain.SearchRequest{}, apperrors.InvalidInput("page must be an integer")
		}
		req.Page = page
	}

	var err error
	if req.MinPrice, err = parseFloatParam(q.Get("minPrice"), "minPrice"); err != nil {
		return domain.SearchRequest{}, err
	}
	if req.MaxPrice, err = parseFloatParam(q.Get("maxPrice"), "maxPrice"); err != nil {
		return domain.SearchRequest{}, err
	}
	if req.MinYear, err = parseIntParam(q.Get("minYear"), "minYear"); err != nil {
		return domain.SearchRequest{}, err
	}
	if req.MaxYear, err = parseIntParam(q.Get("maxYear"), "maxYear"); err != nil {
		return domain.SearchRequest{}, err
	}

	for _, f := range req.Formats {
		if !domain.IsValidFormat(f) {
			return domain.SearchRequest{}, apperrors.InvalidInput(
				fmt.Sprintf("format %q must be one of PDF, EPUB, MOBI", f))
		}
	}

	return req, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseFloatParam(v, name string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be a valid number")
	}
	if f < 0 {
		return nil, apperrors.InvalidInput(name + " must not be negative")
	}
	return &f, nil
}

func parseIntParam(v, name string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be an integer")
	}
	return &n, nil
}

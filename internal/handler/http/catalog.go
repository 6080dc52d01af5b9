package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JesusFern/BookLog-ELK-Stack/pkg/httputil"
	"github.com/JesusFern/BookLog-ELK-Stack/pkg/validator"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/service"
)

// BookHandler handles HTTP requests for the thin catalog endpoints.
type BookHandler struct {
	catalog *service.CatalogService
	search  *service.SearchService
	logger  *slog.Logger
}

// NewBookHandler creates a new catalog HTTP handler.
func NewBookHandler(catalog *service.CatalogService, search *service.SearchService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		catalog: catalog,
		search:  search,
		logger:  logger,
	}
}

// Create handles POST /api/v1/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBookInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.catalog.CreateBook(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// Get handles GET /api/v1/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// Purchase handles POST /api/v1/books/{id}/purchase.
func (h *BookHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	count, err := h.catalog.Purchase(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{
			"id":             id,
			"purchasedCount": count,
		},
	})
}

// Formats handles GET /api/v1/books/formats.
func (h *BookHandler) Formats(w http.ResponseWriter, r *http.Request) {
	formats, err := h.catalog.AvailableFormats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"formats": formats},
	})
}

// Top handles GET /api/v1/books/top.
func (h *BookHandler) Top(w http.ResponseWriter, r *http.Request) {
	docs, err := h.search.TopBooks(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"results": docs},
	})
}

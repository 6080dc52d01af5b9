// Package service implements the business logic over the primary store
// and the search index.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// Page sizes are fixed per endpoint, never client-controlled.
const (
	SearchPageSize = 10
	TopBooksSize   = 10
)

// SearchService implements the query paths over the search index.
type SearchService struct {
	index  index.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(idx index.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  idx,
		logger: logger,
	}
}

// Search runs a free-text, filtered, paginated catalog search and
// augments the response with facets.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	req.PageSize = SearchPageSize
	req.Normalize(SearchPageSize)

	hits, err := s.index.Search(ctx, query.Build(req))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	// A facet failure fails the whole response; empty facets must never
	// masquerade as real zero counts.
	facets, err := s.index.Facets(ctx)
	if err != nil {
		return nil, fmt.Errorf("search facets: %w", err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", req.Query),
		slog.Int("page", req.Page),
		slog.Int("total", hits.Total),
	)

	return &domain.SearchResult{
		Total:      hits.Total,
		Page:       req.Page,
		Size:       req.PageSize,
		TotalPages: domain.TotalPagesFor(hits.Total, req.PageSize),
		Results:    hits.Docs,
		Facets:     &facets,
	}, nil
}

// Suggest returns at most five title completions for the given prefix.
// A blank prefix short-circuits to an empty list without touching the
// index.
func (s *SearchService) Suggest(ctx context.Context, prefix string) ([]domain.Suggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []domain.Suggestion{}, nil
	}

	suggestions, err := s.index.Suggest(ctx, strings.ToLower(prefix), query.SuggestLimit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return suggestions, nil
}

// Related returns at most five documents similar to the given one.
func (s *SearchService) Related(ctx context.Context, id string) ([]domain.BookDocument, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("book id is required")
	}

	docs, err := s.index.Related(ctx, id, query.RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("related: %w", err)
	}
	if docs == nil {
		docs = []domain.BookDocument{}
	}
	return docs, nil
}

// Facets reports the distinct filterable values with real counts.
func (s *SearchService) Facets(ctx context.Context) (*domain.Facets, error) {
	facets, err := s.index.Facets(ctx)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	return &facets, nil
}

// TopBooks returns the most-purchased books, ties broken by id.
func (s *SearchService) TopBooks(ctx context.Context) ([]domain.BookDocument, error) {
	hits, err := s.index.Search(ctx, query.BuildTopBooks(TopBooksSize))
	if err != nil {
		return nil, fmt.Errorf("top books: %w", err)
	}
	return hits.Docs, nil
}

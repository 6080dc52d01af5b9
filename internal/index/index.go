// Package index defines the search-index capability consumed by the
// service layer. The Elasticsearch adapter is the production backend; the
// memory adapter backs tests.
package index

import (
	"context"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// Hits is one page of matching documents together with the total count
// across all pages.
type Hits struct {
	Total int
	Docs  []domain.BookDocument
}

// SearchIndex is the capability interface over the search index. All
// operations are bounded by the caller's context. Implementations must not
// hold global client state.
type SearchIndex interface {
	// EnsureIndex creates the index with the fixed mapping when it does
	// not exist. When it exists and recreate is set, all documents are
	// deleted so a subsequent bulk load starts from empty.
	EnsureIndex(ctx context.Context, recreate bool) error

	// Upsert maps and writes one book, overwriting any document with the
	// same id.
	Upsert(ctx context.Context, book domain.Book) error

	// UpdateField partially updates a single field of an existing
	// document without rewriting it. Returns a not-found error when no
	// document has the given id.
	UpdateField(ctx context.Context, id, field string, value any) error

	// BulkUpsert writes a batch of books in one request and reports
	// per-id failures. Successfully written documents are not rolled
	// back on partial failure.
	BulkUpsert(ctx context.Context, books []domain.Book) (domain.ReindexReport, error)

	// Search executes a compiled query.
	Search(ctx context.Context, q query.Compiled) (Hits, error)

	// Suggest returns completion suggestions for the given prefix,
	// deduplicated by document id, at most limit entries.
	Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error)

	// Related returns documents similar to the one with the given id,
	// never including the seed itself.
	Related(ctx context.Context, id string, limit int) ([]domain.BookDocument, error)

	// Facets computes the distinct filterable values and their real
	// per-value document counts.
	Facets(ctx context.Context) (domain.Facets, error)

	// Ping reports whether the index backend is reachable.
	Ping(ctx context.Context) error
}

// Package store defines the primary-store capability. The catalog record
// in PostgreSQL is the system of record; the search index is derived
// from it and never written back.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

// DB is the subset of *pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BookStore is the capability interface over the primary book record.
type BookStore interface {
	// Create inserts a new book record.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID returns one book; not-found maps to an error.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns a batch of books ordered by id, for batched reindex
	// sweeps.
	List(ctx context.Context, offset, limit int) ([]domain.Book, error)

	// IncrementPurchased atomically bumps the purchase counter and
	// returns the post-increment value. The index update must always be
	// derived from this value.
	IncrementPurchased(ctx context.Context, id string) (int, error)

	// DistinctFormats returns the distinct format values present across
	// all books.
	DistinctFormats(ctx context.Context) ([]string, error)

	// Count returns the number of book records.
	Count(ctx context.Context) (int, error)
}

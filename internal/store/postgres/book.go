// Package postgres implements the BookStore capability on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/store"
)

// BookRepository implements store.BookStore using PostgreSQL.
type BookRepository struct {
	db store.DB
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(db store.DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = `id, title, author, genre, summary, language, price,
	       formats, cover_image_url, download_urls, published_year,
	       num_pages, purchased_count, created_at`

// Create inserts a new book record.
func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	urlsJSON, err := json.Marshal(book.DownloadURLs)
	if err != nil {
		return fmt.Errorf("marshal download_urls: %w", err)
	}

	query := `
		INSERT INTO books (
			id, title, author, genre, summary, language, price,
			formats, cover_image_url, download_urls, published_year,
			num_pages, purchased_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Genre,
		book.Summary,
		book.Language,
		book.Price,
		formatStrings(book.Formats),
		book.CoverImageURL,
		urlsJSON,
		book.PublishedYear,
		book.NumPages,
		book.PurchasedCount,
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its id.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1`

	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", id)
		}
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return book, nil
}

// List returns one batch of books ordered by id. The stable order keeps
// batched reindex sweeps free of duplicates and gaps.
func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, nil
}

// IncrementPurchased atomically bumps purchased_count and returns the
// post-increment value.
func (r *BookRepository) IncrementPurchased(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE books
		SET purchased_count = purchased_count + 1
		WHERE id = $1
		RETURNING purchased_count`

	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("book", id)
		}
		return 0, fmt.Errorf("increment purchased_count for %s: %w", id, err)
	}

	return count, nil
}

// DistinctFormats returns the distinct format values across all books.
func (r *BookRepository) DistinctFormats(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT unnest(formats) AS format
		FROM books
		ORDER BY format`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct formats: %w", err)
	}
	defer rows.Close()

	var formats []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan format row: %w", err)
		}
		formats = append(formats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate format rows: %w", err)
	}

	if formats == nil {
		formats = []string{}
	}
	return formats, nil
}

// Count returns the number of book records.
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// scanBook reads one book row, decoding the formats array and the
// download_urls JSON column.
func scanBook(row pgx.Row) (*domain.Book, error) {
	var (
		book     domain.Book
		formats  []string
		urlsJSON []byte
	)

	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Summary,
		&book.Language,
		&book.Price,
		&formats,
		&book.CoverImageURL,
		&urlsJSON,
		&book.PublishedYear,
		&book.NumPages,
		&book.PurchasedCount,
		&book.CreatedAt,
	); err != nil {
		return nil, err
	}

	book.Formats = make([]domain.Format, 0, len(formats))
	for _, f := range formats {
		book.Formats = append(book.Formats, domain.Format(f))
	}

	if urlsJSON != nil {
		if err := json.Unmarshal(urlsJSON, &book.DownloadURLs); err != nil {
			return nil, fmt.Errorf("unmarshal download_urls: %w", err)
		}
	}

	return &book, nil
}

func formatStrings(formats []domain.Format) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, string(f))
	}
	return out
}

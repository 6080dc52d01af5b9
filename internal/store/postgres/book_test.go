package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JesusFern/BookLog-ELK-Stack/pkg/database"
	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

func setupRepo(t *testing.T) (*BookRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := database.NewMockPool(t)
	return NewBookRepository(mock), mock
}

func sampleBook() *domain.Book {
	year := 1965
	pages := 412
	return &domain.Book{
		ID:            "b1",
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genre:         "SciFi",
		Summary:       "A desert planet and its spice.",
		Language:      "en",
		Price:         12.50,
		Formats:       []domain.Format{domain.FormatPDF},
		CoverImageURL: "https://covers.example/dune.jpg",
		DownloadURLs: map[domain.Format]string{
			domain.FormatPDF: "https://files.example/dune.pdf",
		},
		PublishedYear:  &year,
		NumPages:       &pages,
		PurchasedCount: 40,
		CreatedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func bookColumnNames() []string {
	return []string{
		"id", "title", "author", "genre", "summary", "language", "price",
		"formats", "cover_image_url", "download_urls", "published_year",
		"num_pages", "purchased_count", "created_at",
	}
}

func bookRow(b *domain.Book) *pgxmock.Rows {
	urlsJSON, _ := json.Marshal(b.DownloadURLs)
	formats := make([]string, 0, len(b.Formats))
	for _, f := range b.Formats {
		formats = append(formats, string(f))
	}

	return pgxmock.NewRows(bookColumnNames()).AddRow(
		b.ID, b.Title, b.Author, b.Genre, b.Summary, b.Language, b.Price,
		formats, b.CoverImageURL, urlsJSON, b.PublishedYear,
		b.NumPages, b.PurchasedCount, b.CreatedAt,
	)
}

func TestCreate(t *testing.T) {
	repo, mock := setupRepo(t)
	book := sampleBook()

	mock.ExpectExec(`INSERT INTO books`).
		WithArgs(
			book.ID, book.Title, book.Author, book.Genre, book.Summary,
			book.Language, book.Price, []string{"PDF"}, book.CoverImageURL,
			pgxmock.AnyArg(), book.PublishedYear, book.NumPages,
			book.PurchasedCount, book.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), book)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := setupRepo(t)
	book := sampleBook()

	mock.ExpectQuery(`SELECT (.+) FROM books\s+WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(bookRow(book))

	got, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, book, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM books\s+WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := setupRepo(t)
	book := sampleBook()

	mock.ExpectQuery(`SELECT (.+) FROM books\s+ORDER BY id\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(bookRow(book))

	books, err := repo.List(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b1", books[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementPurchased(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`UPDATE books\s+SET purchased_count = purchased_count \+ 1`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"purchased_count"}).AddRow(41))

	count, err := repo.IncrementPurchased(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 41, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementPurchasedNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`UPDATE books\s+SET purchased_count = purchased_count \+ 1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.IncrementPurchased(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctFormats(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT unnest\(formats\)`).
		WillReturnRows(pgxmock.NewRows([]string{"format"}).
			AddRow("EPUB").
			AddRow("PDF"))

	formats, err := repo.DistinctFormats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EPUB", "PDF"}, formats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctFormatsEmpty(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT unnest\(formats\)`).
		WillReturnRows(pgxmock.NewRows([]string{"format"}))

	formats, err := repo.DistinctFormats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, formats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM books`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDatabaseError(t *testing.T) {
	repo, mock := setupRepo(t)
	book := sampleBook()

	mock.ExpectExec(`INSERT INTO books`).
		WithArgs(
			book.ID, book.Title, book.Author, book.Genre, book.Summary,
			book.Language, book.Price, []string{"PDF"}, book.CoverImageURL,
			pgxmock.AnyArg(), book.PublishedYear, book.NumPages,
			book.PurchasedCount, book.CreatedAt,
		).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), book)
	assert.ErrorContains(t, err, "insert book")
	require.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/store"
)

// BookEventPublisher emits change records after a primary-store mutation
// succeeds. Publish failures are logged, never propagated: the replay
// path (reindex) heals any missed event.
type BookEventPublisher interface {
	PublishBookCreated(ctx context.Context, book *domain.Book) error
	PublishBookPurchased(ctx context.Context, id string, purchasedCount int) error
}

// CatalogService implements the thin catalog write and read paths. The
// primary store is the system of record; the index is derived.
type CatalogService struct {
	store     store.BookStore
	index     index.SearchIndex
	publisher BookEventPublisher
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service. publisher may be nil
// when event propagation is disabled.
func NewCatalogService(st store.BookStore, idx index.SearchIndex, publisher BookEventPublisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     st,
		index:     idx,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	ID            string            `json:"id"`
	Title         string            `json:"title" validate:"required"`
	Author        string            `json:"author" validate:"required"`
	Genre         string            `json:"genre" validate:"required"`
	Summary       string            `json:"summary"`
	Language      string            `json:"language"`
	Price         float64           `json:"price" validate:"gte=0"`
	Formats       []string          `json:"formats" validate:"required,min=1,dive,oneof=PDF EPUB MOBI"`
	CoverImageURL string            `json:"coverImageUrl"`
	DownloadURLs  map[string]string `json:"downloadUrls"`
	PublishedYear *int              `json:"publishedYear"`
	NumPages      *int              `json:"numPages"`
}

// CreateBook writes the record to the primary store and then upserts its
// index document. An index write failure fails the whole create; the
// store record persists and is healed by the next reindex.
func (s *CatalogService) CreateBook(ctx context.Context, input *CreateBookInput) (*domain.Book, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	formats := make([]domain.Format, 0, len(input.Formats))
	for _, f := range input.Formats {
		formats = append(formats, domain.Format(f))
	}
	urls := make(map[domain.Format]string, len(input.DownloadURLs))
	for f, u := range input.DownloadURLs {
		urls[domain.Format(f)] = u
	}

	book := &domain.Book{
		ID:            id,
		Title:         input.Title,
		Author:        input.Author,
		Genre:         input.Genre,
		Summary:       input.Summary,
		Language:      input.Language,
		Price:         input.Price,
		Formats:       formats,
		CoverImageURL: input.CoverImageURL,
		DownloadURLs:  urls,
		PublishedYear: input.PublishedYear,
		NumPages:      input.NumPages,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.index.Upsert(ctx, *book); err != nil {
		s.logger.ErrorContext(ctx, "index upsert failed after store write",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.publishCreated(ctx, book)

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// GetBook returns one book from the primary store.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Purchase atomically increments the purchase counter in the primary
// store and emits a change record carrying the authoritative
// post-increment value. The index is updated by the event consumer, never
// from a value computed outside the store.
func (s *CatalogService) Purchase(ctx context.Context, id string) (int, error) {
	count, err := s.store.IncrementPurchased(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("purchase book: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBookPurchased(ctx, id, count); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish purchase event",
				slog.String("book_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "book purchased",
		slog.String("book_id", id),
		slog.Int("purchased_count", count),
	)

	return count, nil
}

// AvailableFormats returns the distinct formats across the catalog,
// sourced from the primary store.
func (s *CatalogService) AvailableFormats(ctx context.Context) ([]string, error) {
	formats, err := s.store.DistinctFormats(ctx)
	if err != nil {
		return nil, fmt.Errorf("available formats: %w", err)
	}
	return formats, nil
}

func (s *CatalogService) publishCreated(ctx context.Context, book *domain.Book) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish create event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}
}

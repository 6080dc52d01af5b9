// Package event wires change-record propagation between the catalog
// write path and the index sync engine over Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/JesusFern/BookLog-ELK-Stack/pkg/kafka"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

// Topics for book change records.
var (
	TopicBookCreated   = pkgkafka.Topic("book", "created")
	TopicBookPurchased = pkgkafka.Topic("book", "purchased")
)

const aggregateTypeBook = "book"

// sourceService identifies the emitting service in event envelopes.
const sourceService = "booklog"

// BookCreatedData is the payload of a book.created change record. It
// carries the full record so the consumer can upsert without reading the
// primary store.
type BookCreatedData struct {
	Book domain.Book `json:"book"`
}

// BookPurchasedData is the payload of a book.purchased change record.
// PurchasedCount is the primary store's authoritative post-increment
// value; consumers must never compute a count themselves.
type BookPurchasedData struct {
	ID             string `json:"id"`
	PurchasedCount int    `json:"purchasedCount"`
}

// Publisher emits book change records to Kafka.
type Publisher struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates a new book event publisher.
func NewPublisher(producer *pkgkafka.Producer, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
	}
}

// PublishBookCreated emits a book.created change record.
func (p *Publisher) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	evt, err := pkgkafka.NewEvent(TopicBookCreated, book.ID, aggregateTypeBook, sourceService, BookCreatedData{Book: *book})
	if err != nil {
		return fmt.Errorf("build book.created event: %w", err)
	}

	if err := p.producer.Publish(ctx, TopicBookCreated, evt); err != nil {
		return fmt.Errorf("publish book.created: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.created",
		slog.String("book_id", book.ID),
		slog.String("event_id", evt.EventID),
	)
	return nil
}

// PublishBookPurchased emits a book.purchased change record.
func (p *Publisher) PublishBookPurchased(ctx context.Context, id string, purchasedCount int) error {
	evt, err := pkgkafka.NewEvent(TopicBookPurchased, id, aggregateTypeBook, sourceService, BookPurchasedData{
		ID:             id,
		PurchasedCount: purchasedCount,
	})
	if err != nil {
		return fmt.Errorf("build book.purchased event: %w", err)
	}

	if err := p.producer.Publish(ctx, TopicBookPurchased, evt); err != nil {
		return fmt.Errorf("publish book.purchased: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.purchased",
		slog.String("book_id", id),
		slog.Int("purchased_count", purchasedCount),
	)
	return nil
}

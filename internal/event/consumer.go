package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/JesusFern/BookLog-ELK-Stack/pkg/kafka"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/service"
)

// Consumer applies book change records to the search index.
type Consumer struct {
	sync   *service.SyncService
	logger *slog.Logger
}

// NewConsumer creates a new change-record consumer.
func NewConsumer(sync *service.SyncService, logger *slog.Logger) *Consumer {
	return &Consumer{
		sync:   sync,
		logger: logger,
	}
}

// Handle dispatches one change record by its event type. Unknown types
// are logged and acknowledged so they never poison the partition.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicBookCreated:
		return c.handleBookCreated(ctx, event)
	case TopicBookPurchased:
		return c.handleBookPurchased(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleBookCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data BookCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal book.created data: %w", err)
	}

	if err := c.sync.ApplyBookCreated(ctx, data.Book); err != nil {
		return fmt.Errorf("apply book.created: %w", err)
	}

	c.logger.InfoContext(ctx, "indexed book from created event",
		slog.String("book_id", data.Book.ID),
	)
	return nil
}

func (c *Consumer) handleBookPurchased(ctx context.Context, event *pkgkafka.Event) error {
	var data BookPurchasedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal book.purchased data: %w", err)
	}

	if err := c.sync.ApplyBookPurchased(ctx, data.ID, data.PurchasedCount); err != nil {
		return fmt.Errorf("apply book.purchased: %w", err)
	}

	c.logger.InfoContext(ctx, "updated purchase count from event",
		slog.String("book_id", data.ID),
		slog.Int("purchased_count", data.PurchasedCount),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/store"
)

// DefaultReindexBatchSize bounds the number of records fetched and bulk
// written per round trip during a reindex sweep.
const DefaultReindexBatchSize = 500

// SyncService keeps the search index consistent with the primary store:
// full reindex sweeps plus incremental application of change records.
type SyncService struct {
	store     store.BookStore
	index     index.SearchIndex
	batchSize int
	logger    *slog.Logger

	reindexing atomic.Bool
}

// NewSyncService creates a new sync service. batchSize <= 0 selects the
// default.
func NewSyncService(st store.BookStore, idx index.SearchIndex, batchSize int, logger *slog.Logger) *SyncService {
	if batchSize <= 0 {
		batchSize = DefaultReindexBatchSize
	}
	return &SyncService{
		store:     st,
		index:     idx,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Reindex sweeps the whole primary store into the index in batches. With
// recreate set, all existing documents are removed first. Per-id bulk
// failures are aggregated into the report; successfully written documents
// stay written. Only one reindex runs at a time.
func (s *SyncService) Reindex(ctx context.Context, recreate bool) (domain.ReindexReport, error) {
	if !s.reindexing.CompareAndSwap(false, true) {
		return domain.ReindexReport{}, apperrors.Conflict("a reindex is already in progress")
	}
	defer s.reindexing.Store(false)

	if err := s.index.EnsureIndex(ctx, recreate); err != nil {
		return domain.ReindexReport{}, fmt.Errorf("reindex: ensure index: %w", err)
	}

	var report domain.ReindexReport
	for offset := 0; ; offset += s.batchSize {
		books, err := s.store.List(ctx, offset, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("reindex: list books at offset %d: %w", offset, err)
		}
		if len(books) == 0 {
			break
		}

		batch, err := s.index.BulkUpsert(ctx, books)
		if err != nil {
			return report, fmt.Errorf("reindex: bulk write at offset %d: %w", offset, err)
		}
		report.Indexed += batch.Indexed
		report.FailedIDs = append(report.FailedIDs, batch.FailedIDs...)

		if len(books) < s.batchSize {
			break
		}
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.Bool("recreate", recreate),
		slog.Int("indexed", report.Indexed),
		slog.Int("failed", len(report.FailedIDs)),
	)

	return report, nil
}

// ApplyBookCreated applies a create/update change record to the index.
// Upserts are idempotent, so replays are safe.
func (s *SyncService) ApplyBookCreated(ctx context.Context, book domain.Book) error {
	if err := s.index.Upsert(ctx, book); err != nil {
		return fmt.Errorf("apply book created: %w", err)
	}
	return nil
}

// ApplyBookPurchased applies a purchase change record. The count carried
// by the record is the store's authoritative post-increment value. A
// document missing from the index is left for the next reindex sweep to
// pick up rather than treated as a consumer failure.
func (s *SyncService) ApplyBookPurchased(ctx context.Context, id string, purchasedCount int) error {
	err := s.index.UpdateField(ctx, id, "purchasedCount", purchasedCount)
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "purchase record for unindexed book, deferring to reindex",
			slog.String("book_id", id),
		)
		return nil
	}
	return fmt.Errorf("apply book purchased: %w", err)
}

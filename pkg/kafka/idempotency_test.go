package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryIdempotencyStore_AddAndContains(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	exists, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Add(ctx, "evt-1"))

	exists, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)

	require.NoError(t, store.Add(ctx, "evt-ttl"))
	time.Sleep(20 * time.Millisecond)

	exists, err := store.Contains(ctx, "evt-ttl")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, store.Len(), "expired entry should be removed on access")
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		return nil
	}, newTestLogger())

	event, err := NewEvent("booklog.book.created", "b1", "book", "test", map[string]string{"id": "b1"})
	require.NoError(t, err)

	require.NoError(t, handler(ctx, event))
	require.NoError(t, handler(ctx, event))

	assert.Equal(t, 1, calls, "second delivery of the same event must be skipped")
}

func TestIdempotentHandler_DoesNotRecordFailedEvents(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		if calls == 1 {
			return errors.New("transient index failure")
		}
		return nil
	}, newTestLogger())

	event, err := NewEvent("booklog.book.purchased", "b1", "book", "test", nil)
	require.NoError(t, err)

	require.Error(t, handler(ctx, event))
	require.NoError(t, handler(ctx, event), "retry after failure must be processed")
	assert.Equal(t, 2, calls)
}

func TestIdempotentHandler_PassesThroughWithoutEventID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		return nil
	}, newTestLogger())

	event := &Event{EventType: "booklog.book.created"}
	require.NoError(t, handler(ctx, event))
	require.NoError(t, handler(ctx, event))

	assert.Equal(t, 2, calls)
}

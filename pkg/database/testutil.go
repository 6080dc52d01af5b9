package database

import (
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

// NewMockPool returns a pgxmock pool for repository tests. The mock is
// closed automatically when the test finishes.
func NewMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}

	t.Cleanup(func() {
		mock.Close()
	})

	return mock
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("book", "b1")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "book")
	assert.Contains(t, err.Message, "b1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIndexWrite_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := IndexWrite(cause)

	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrIndexWrite))
	assert.True(t, errors.Is(err, cause))
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("elasticsearch", errors.New("dial tcp: refused"))

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Message, "elasticsearch")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("book", "x"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("search: %w", InvalidInput("bad page")), http.StatusBadRequest},
		{"sentinel not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"sentinel index write", fmt.Errorf("upsert: %w", ErrIndexWrite), http.StatusBadGateway},
		{"sentinel unavailable", fmt.Errorf("ping: %w", ErrUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

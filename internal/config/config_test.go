package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:9200", cfg.ElasticsearchURL)
	assert.Equal(t, "books", cfg.ElasticsearchIndex)
	assert.Equal(t, "elasticsearch", cfg.SearchIndex)
	assert.Equal(t, 500, cfg.ReindexBatchSize)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKLOG_HTTP_PORT", "9999")
	t.Setenv("SEARCH_INDEX", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REINDEX_BATCH_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.SearchIndex)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 50, cfg.ReindexBatchSize)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("BOOKLOG_HTTP_PORT", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid HTTP port")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SEARCH_INDEX", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid search index backend")
}

func TestPostgresConfig(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 5433, pg.Port)
	assert.Contains(t, pg.DSN(), "db.internal:5433")
}

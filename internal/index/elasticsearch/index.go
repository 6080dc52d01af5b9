// Package elasticsearch implements the SearchIndex capability on top of
// Elasticsearch 8.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

// Index is an Elasticsearch-backed implementation of index.SearchIndex.
type Index struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.BookDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a new Elasticsearch index adapter connected to the given URL.
// If indexName is empty, DefaultIndexName ("books") is used. The index
// itself is created lazily by EnsureIndex.
func New(esURL string, indexName string, logger *slog.Logger) (*Index, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Index{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (i *Index) Ping(ctx context.Context) error {
	res, err := i.client.Ping(i.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the books index with the fixed mapping when absent.
// When the index already exists and recreate is set, every document is
// removed via delete-by-query so a following bulk load starts from empty.
func (i *Index) EnsureIndex(ctx context.Context, recreate bool) error {
	res, err := i.client.Indices.Exists(
		[]string{i.indexName},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return apperrors.Unavailable("elasticsearch", fmt.Errorf("check index exists: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusOK {
		if !recreate {
			i.logger.Info("elasticsearch index already exists", "index", i.indexName)
			return nil
		}
		return i.deleteAllDocuments(ctx)
	}

	return i.createIndex(ctx)
}

func (i *Index) createIndex(ctx context.Context) error {
	res, err := i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return apperrors.Unavailable("elasticsearch", fmt.Errorf("create index: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexWrite(decodeError(res.Body, res.Status(), "create index"))
	}

	i.logger.Info("elasticsearch index created", "index", i.indexName)
	return nil
}

// deleteAllDocuments empties the index while keeping its mapping intact.
func (i *Index) deleteAllDocuments(ctx context.Context) error {
	body := `{"query":{"match_all":{}}}`

	res, err := i.client.DeleteByQuery(
		[]string{i.indexName},
		strings.NewReader(body),
		i.client.DeleteByQuery.WithContext(ctx),
		i.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return apperrors.Unavailable("elasticsearch", fmt.Errorf("delete by query: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexWrite(decodeError(res.Body, res.Status(), "delete by query"))
	}

	i.logger.Info("elasticsearch index emptied", "index", i.indexName)
	return nil
}

// Upsert maps and writes a single book, overwriting any existing document
// with the same id.
func (i *Index) Upsert(ctx context.Context, book domain.Book) error {
	doc := domain.NewBookDocument(book)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch upsert: marshal document: %w", err)
	}

	res, err := i.client.Index(
		i.indexName,
		bytes.NewReader(data),
		i.client.Index.WithDocumentID(doc.ID),
		i.client.Index.WithRefresh("true"),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.IndexWrite(fmt.Errorf("index document %s: %w", doc.ID, err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexWrite(decodeError(res.Body, res.Status(), "index document "+doc.ID))
	}

	i.logger.Debug("indexed book", "id", doc.ID, "title", doc.Title)
	return nil
}

// UpdateField performs a partial update of a single field without reading
// the document first. A missing document maps to a not-found error.
func (i *Index) UpdateField(ctx context.Context, id, field string, value any) error {
	body, err := json.Marshal(map[string]any{
		"doc": map[string]any{field: value},
	})
	if err != nil {
		return fmt.Errorf("elasticsearch update: marshal partial doc: %w", err)
	}

	res, err := i.client.Update(
		i.indexName,
		id,
		bytes.NewReader(body),
		i.client.Update.WithRefresh("true"),
		i.client.Update.WithContext(ctx),
	)
	if err != nil {
		return apperrors.IndexWrite(fmt.Errorf("update document %s: %w", id, err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return apperrors.NotFound("document", id)
	}
	if res.IsError() {
		return apperrors.IndexWrite(decodeError(res.Body, res.Status(), "update document "+id))
	}

	i.logger.Debug("updated book field", "id", id, "field", field)
	return nil
}

// BulkUpsert writes one batch of books as a single NDJSON bulk request and
// reports per-id failures. Written documents stay written on partial failure.
func (i *Index) BulkUpsert(ctx context.Context, books []domain.Book) (domain.ReindexReport, error) {
	if len(books) == 0 {
		return domain.ReindexReport{}, nil
	}

	var buf bytes.Buffer
	for _, book := range books {
		doc := domain.NewBookDocument(book)

		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, i.indexName, doc.ID)
		buf.WriteString(meta)
		buf.WriteByte('\n')

		data, err := json.Marshal(doc)
		if err != nil {
			return domain.ReindexReport{}, fmt.Errorf("elasticsearch bulk: marshal document %s: %w", doc.ID, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		i.client.Bulk.WithContext(ctx),
		i.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return domain.ReindexReport{}, apperrors.IndexWrite(fmt.Errorf("bulk request: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return domain.ReindexReport{}, apperrors.IndexWrite(decodeError(res.Body, res.Status(), "bulk request"))
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return domain.ReindexReport{}, fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}

	report := domain.ReindexReport{}
	for _, item := range bulkResp.Items {
		if item.Index.Status >= 300 {
			report.FailedIDs = append(report.FailedIDs, item.Index.ID)
			i.logger.Warn("bulk item failed",
				"id", item.Index.ID,
				"status", item.Index.Status,
				"type", item.Index.Error.Type,
				"reason", item.Index.Error.Reason,
			)
			continue
		}
		report.Indexed++
	}

	return report, nil
}

// decodeError turns an Elasticsearch error body into a Go error.
func decodeError(body io.Reader, status, op string) error {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}

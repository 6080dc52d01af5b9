package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// Related returns up to limit documents similar to the seed document,
// using a more-like-this query over genre, author, and summary. The seed
// itself is excluded explicitly rather than relying on term-frequency
// thresholds to drop it.
func (i *Index) Related(ctx context.Context, id string, limit int) ([]domain.BookDocument, error) {
	exists, err := i.documentExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("document", id)
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"more_like_this": map[string]any{
							"fields": boostedFieldSpecs(query.RelatedFields()),
							"like": []any{
								map[string]any{"_index": i.indexName, "_id": id},
							},
							"min_term_freq":   query.RelatedMinTermFreq,
							"max_query_terms": query.RelatedMaxTerms,
						},
					},
				},
				"must_not": []any{
					map[string]any{"ids": map[string]any{"values": []string{id}}},
				},
			},
		},
		"size": limit,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch related: marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(data)),
		i.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, apperrors.Unavailable("elasticsearch", fmt.Errorf("related: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError(res.Body, res.Status(), "related")
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch related: decode response: %w", err)
	}

	docs := make([]domain.BookDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// documentExists checks for the seed document without fetching its body.
func (i *Index) documentExists(ctx context.Context, id string) (bool, error) {
	res, err := i.client.Exists(
		i.indexName,
		id,
		i.client.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, apperrors.Unavailable("elasticsearch", fmt.Errorf("head document %s: %w", id, err))
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("elasticsearch: head document %s: unexpected status %s", id, res.Status())
	}
}

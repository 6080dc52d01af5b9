package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// Search executes a compiled query against Elasticsearch.
func (i *Index) Search(ctx context.Context, q query.Compiled) (index.Hits, error) {
	data, err := json.Marshal(renderCompiled(q))
	if err != nil {
		return index.Hits{}, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(data)),
		i.client.Search.WithContext(ctx),
		i.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return index.Hits{}, apperrors.Unavailable("elasticsearch", fmt.Errorf("search: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return index.Hits{}, decodeError(res.Body, res.Status(), "search")
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return index.Hits{}, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	docs := make([]domain.BookDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, hit.Source)
	}

	return index.Hits{
		Total: esResp.Hits.Total.Value,
		Docs:  docs,
	}, nil
}

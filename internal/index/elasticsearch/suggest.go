package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

const suggesterName = "title_suggest"

// esSuggestResponse is the structure used to decode completion-suggester
// responses.
type esSuggestResponse struct {
	Suggest map[string][]struct {
		Options []struct {
			ID     string              `json:"_id"`
			Source domain.BookDocument `json:"_source"`
		} `json:"options"`
	} `json:"suggest"`
}

// Suggest runs a completion-suggester query over titleSuggest for the
// given prefix. Results are deduplicated by document id and capped at
// limit entries. The caller normalizes the prefix (trim, lowercase)
// before this is reached.
func (i *Index) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	body := map[string]any{
		"suggest": map[string]any{
			suggesterName: map[string]any{
				"prefix": prefix,
				"completion": map[string]any{
					"field": "titleSuggest",
					"size":  limit,
				},
			},
		},
		"_source": []string{"id", "title", "author", "coverImageUrl"},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(data)),
		i.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, apperrors.Unavailable("elasticsearch", fmt.Errorf("suggest: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError(res.Body, res.Status(), "suggest")
	}

	var esResp esSuggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: decode response: %w", err)
	}

	// Deduplicate by document id while preserving suggester order.
	seen := make(map[string]struct{})
	suggestions := make([]domain.Suggestion, 0, limit)
	for _, entry := range esResp.Suggest[suggesterName] {
		for _, opt := range entry.Options {
			id := opt.Source.ID
			if id == "" {
				id = opt.ID
			}
			if _, exists := seen[id]; exists {
				continue
			}
			seen[id] = struct{}{}
			suggestions = append(suggestions, domain.Suggestion{
				ID:            id,
				Title:         opt.Source.Title,
				Author:        opt.Source.Author,
				CoverImageURL: opt.Source.CoverImageURL,
			})
			if len(suggestions) >= limit {
				return suggestions, nil
			}
		}
	}

	return suggestions, nil
}

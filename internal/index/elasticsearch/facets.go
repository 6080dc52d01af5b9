package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

// facetTermsSize bounds the distinct values returned per dimension.
const facetTermsSize = 100

// esAggsResponse decodes the aggregation-only facet response.
type esAggsResponse struct {
	Aggregations struct {
		Formats          esTermsAgg `json:"formats"`
		Genres           esTermsAgg `json:"genres"`
		PublicationYears esTermsAgg `json:"publication_years"`
		PriceStats       struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
			Avg *float64 `json:"avg"`
		} `json:"price_stats"`
	} `json:"aggregations"`
}

type esTermsAgg struct {
	Buckets []struct {
		Key      any `json:"key"`
		DocCount int `json:"doc_count"`
	} `json:"buckets"`
}

// Facets computes real per-value counts with terms aggregations and price
// statistics with a stats aggregation, in a single size-0 request.
func (i *Index) Facets(ctx context.Context) (domain.Facets, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"formats": map[string]any{
				"terms": map[string]any{"field": "format", "size": facetTermsSize},
			},
			"genres": map[string]any{
				"terms": map[string]any{"field": "genre", "size": facetTermsSize},
			},
			"publication_years": map[string]any{
				"terms": map[string]any{
					"field": "publishedYear",
					"size":  facetTermsSize,
					"order": map[string]any{"_key": "desc"},
				},
			},
			"price_stats": map[string]any{
				"stats": map[string]any{"field": "price"},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return domain.Facets{}, fmt.Errorf("elasticsearch facets: marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(data)),
		i.client.Search.WithContext(ctx),
	)
	if err != nil {
		return domain.Facets{}, apperrors.Unavailable("elasticsearch", fmt.Errorf("facets: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return domain.Facets{}, decodeError(res.Body, res.Status(), "facets")
	}

	var esResp esAggsResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return domain.Facets{}, fmt.Errorf("elasticsearch facets: decode response: %w", err)
	}

	facets := domain.Facets{
		Formats:          bucketsOf(esResp.Aggregations.Formats),
		Genres:           bucketsOf(esResp.Aggregations.Genres),
		PublicationYears: bucketsOf(esResp.Aggregations.PublicationYears),
	}

	stats := esResp.Aggregations.PriceStats
	if stats.Min != nil {
		facets.PriceRange.Min = *stats.Min
	}
	if stats.Max != nil {
		facets.PriceRange.Max = *stats.Max
	}
	if stats.Avg != nil {
		facets.PriceRange.Avg = *stats.Avg
	}

	return facets, nil
}

func bucketsOf(agg esTermsAgg) []domain.FacetBucket {
	buckets := make([]domain.FacetBucket, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		buckets = append(buckets, domain.FacetBucket{
			Value: bucketKey(b.Key),
			Count: b.DocCount,
		})
	}
	return buckets
}

// bucketKey normalizes a terms-aggregation key: keyword buckets come back
// as strings, numeric buckets as float64.
func bucketKey(key any) string {
	switch v := key.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

func testBooks() []domain.Book {
	year1965, year1967, year1943 := 1965, 1967, 1943
	return []domain.Book{
		{
			ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "SciFi",
			Summary: "Paul Atreides and the spice of Arrakis, a desert planet of sand and spice.",
			Price:   12.50, Formats: []domain.Format{domain.FormatPDF},
			PublishedYear: &year1965, PurchasedCount: 40,
		},
		{
			ID: "b2", Title: "Dune Messiah", Author: "Frank Herbert", Genre: "SciFi",
			Summary: "Paul rules the empire from Arrakis, still bound to sand and spice.",
			Price:   14.00, Formats: []domain.Format{domain.FormatEPUB},
			PublishedYear: &year1967, PurchasedCount: 40,
		},
		{
			ID: "b3", Title: "Principito", Author: "Antoine de Saint-Exupery", Genre: "Fable",
			Summary: "A little prince travels between planets and meets a fox.",
			Price:   8.00, Formats: []domain.Format{domain.FormatPDF, domain.FormatMOBI},
			PublishedYear: &year1943, PurchasedCount: 90,
		},
		{
			ID: "b4", Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance",
			Summary: "Elizabeth Bennet navigates manners and marriage.",
			Price:   17.99, Formats: []domain.Format{domain.FormatEPUB},
			PurchasedCount: 25,
		},
	}
}

func seededIndex(t *testing.T) *Index {
	t.Helper()
	idx := New()
	for _, b := range testBooks() {
		require.NoError(t, idx.Upsert(context.Background(), b))
	}
	return idx
}

func search(t *testing.T, idx *Index, req domain.SearchRequest) []domain.BookDocument {
	t.Helper()
	req.Normalize(10)
	hits, err := idx.Search(context.Background(), query.Build(req))
	require.NoError(t, err)
	return hits.Docs
}

func TestUpsertThenSearchRoundTrip(t *testing.T) {
	idx := seededIndex(t)

	docs := search(t, idx, domain.SearchRequest{Query: "dune"})

	require.NotEmpty(t, docs)
	assert.Equal(t, "b1", docs[0].ID)
}

func TestFuzzyTransposedCharacters(t *testing.T) {
	idx := seededIndex(t)

	docs := search(t, idx, domain.SearchRequest{Query: "Pricnipito"})

	require.NotEmpty(t, docs)
	assert.Equal(t, "b3", docs[0].ID)
}

func TestFilterConjunction(t *testing.T) {
	idx := seededIndex(t)
	minPrice, maxPrice := 10.0, 15.0

	docs := search(t, idx, domain.SearchRequest{
		Genres:   []string{"scifi"},
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	require.NotEmpty(t, docs)
	for _, doc := range docs {
		assert.Equal(t, "SciFi", doc.Genre)
		assert.GreaterOrEqual(t, doc.Price, 10.0)
		assert.LessOrEqual(t, doc.Price, 15.0)
	}
}

func TestGenreFilterExcludes(t *testing.T) {
	idx := seededIndex(t)

	docs := search(t, idx, domain.SearchRequest{Genres: []string{"Romance"}})

	require.Len(t, docs, 1)
	assert.Equal(t, "b4", docs[0].ID)
}

func TestFormatAndYearFilters(t *testing.T) {
	idx := seededIndex(t)
	minYear := 1960

	docs := search(t, idx, domain.SearchRequest{
		Formats: []string{"PDF"},
		MinYear: &minYear,
	})

	require.Len(t, docs, 1)
	assert.Equal(t, "b1", docs[0].ID)
}

func TestPaginationPartition(t *testing.T) {
	idx := New()
	const total, pageSize = 23, 5
	for n := 1; n <= total; n++ {
		require.NoError(t, idx.Upsert(context.Background(), domain.Book{
			ID:    fmt.Sprintf("p%02d", n),
			Title: fmt.Sprintf("Paginated %d", n),
			Price: float64(n),
		}))
	}

	seen := make(map[string]int)
	page := 1
	for {
		req := domain.SearchRequest{Page: page}
		req.Normalize(pageSize)
		hits, err := idx.Search(context.Background(), query.Build(req))
		require.NoError(t, err)

		assert.Equal(t, total, hits.Total)
		totalPages := domain.TotalPagesFor(hits.Total, pageSize)
		assert.Equal(t, 5, totalPages)

		for _, doc := range hits.Docs {
			seen[doc.ID]++
		}
		if page >= totalPages {
			break
		}
		page++
	}

	assert.Len(t, seen, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s appeared %d times", id, count)
	}
}

func TestPageBelowOneClampsToFirstPage(t *testing.T) {
	idx := seededIndex(t)

	first := search(t, idx, domain.SearchRequest{Page: 1})
	clamped := search(t, idx, domain.SearchRequest{Page: -3})

	assert.Equal(t, first, clamped)
}

func TestEmptyResultSet(t *testing.T) {
	idx := seededIndex(t)

	req := domain.SearchRequest{Genres: []string{"Horror"}}
	req.Normalize(10)
	hits, err := idx.Search(context.Background(), query.Build(req))
	require.NoError(t, err)

	assert.Equal(t, 0, hits.Total)
	assert.Empty(t, hits.Docs)
	assert.Equal(t, 0, domain.TotalPagesFor(hits.Total, 10))
}

func TestTopBooksOrdering(t *testing.T) {
	idx := seededIndex(t)

	hits, err := idx.Search(context.Background(), query.BuildTopBooks(10))
	require.NoError(t, err)

	require.Len(t, hits.Docs, 4)
	assert.Equal(t, "b3", hits.Docs[0].ID)
	// b1 and b2 tie on purchasedCount; id ascending breaks the tie.
	assert.Equal(t, "b1", hits.Docs[1].ID)
	assert.Equal(t, "b2", hits.Docs[2].ID)
	assert.Equal(t, "b4", hits.Docs[3].ID)
}

func TestSuggestBoundary(t *testing.T) {
	idx := seededIndex(t)

	suggestions, err := idx.Suggest(context.Background(), "du", 5)
	require.NoError(t, err)

	require.Len(t, suggestions, 2)
	seen := make(map[string]struct{})
	for _, s := range suggestions {
		assert.Contains(t, []string{"b1", "b2"}, s.ID)
		_, dup := seen[s.ID]
		assert.False(t, dup)
		seen[s.ID] = struct{}{}
	}
}

func TestSuggestCap(t *testing.T) {
	idx := New()
	for n := 0; n < 8; n++ {
		require.NoError(t, idx.Upsert(context.Background(), domain.Book{
			ID:    fmt.Sprintf("d%d", n),
			Title: fmt.Sprintf("Dusk %d", n),
		}))
	}

	suggestions, err := idx.Suggest(context.Background(), "du", 5)
	require.NoError(t, err)
	assert.Len(t, suggestions, 5)
}

func TestUpdateField(t *testing.T) {
	idx := seededIndex(t)

	require.NoError(t, idx.UpdateField(context.Background(), "b1", "purchasedCount", 41))

	hits, err := idx.Search(context.Background(), query.BuildTopBooks(10))
	require.NoError(t, err)
	for _, doc := range hits.Docs {
		if doc.ID == "b1" {
			assert.Equal(t, 41, doc.PurchasedCount)
			return
		}
	}
	t.Fatal("b1 not found after update")
}

func TestUpdateFieldMissingDocument(t *testing.T) {
	idx := seededIndex(t)

	err := idx.UpdateField(context.Background(), "nope", "purchasedCount", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRelatedExcludesSeed(t *testing.T) {
	idx := seededIndex(t)

	related, err := idx.Related(context.Background(), "b1", 5)
	require.NoError(t, err)

	require.NotEmpty(t, related)
	for _, doc := range related {
		assert.NotEqual(t, "b1", doc.ID)
	}
	// The sibling novel shares genre, author, and summary terms.
	assert.Equal(t, "b2", related[0].ID)
}

func TestRelatedMissingSeed(t *testing.T) {
	idx := seededIndex(t)

	_, err := idx.Related(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFacets(t *testing.T) {
	idx := seededIndex(t)

	facets, err := idx.Facets(context.Background())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, b := range facets.Formats {
		counts[b.Value] = b.Count
	}
	assert.Equal(t, 2, counts["PDF"])
	assert.Equal(t, 2, counts["EPUB"])
	assert.Equal(t, 1, counts["MOBI"])

	genreCounts := map[string]int{}
	for _, b := range facets.Genres {
		genreCounts[b.Value] = b.Count
	}
	assert.Equal(t, 2, genreCounts["SciFi"])

	assert.Equal(t, 8.0, facets.PriceRange.Min)
	assert.Equal(t, 17.99, facets.PriceRange.Max)
	assert.InDelta(t, 13.1225, facets.PriceRange.Avg, 0.0001)
}

func TestReindexIdempotent(t *testing.T) {
	idx := seededIndex(t)
	books := testBooks()

	for run := 0; run < 2; run++ {
		require.NoError(t, idx.EnsureIndex(context.Background(), true))
		report, err := idx.BulkUpsert(context.Background(), books)
		require.NoError(t, err)
		assert.Equal(t, len(books), report.Indexed)
		assert.Empty(t, report.FailedIDs)

		hits, err := idx.Search(context.Background(), query.BuildTopBooks(100))
		require.NoError(t, err)
		assert.Equal(t, len(books), hits.Total)
	}
}

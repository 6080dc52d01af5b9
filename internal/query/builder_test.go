package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

func TestBuildEmptyQueryMatchesEverything(t *testing.T) {
	req := domain.SearchRequest{Query: "   ", Page: 1, PageSize: 10}

	compiled := Build(req)

	root, ok := compiled.Root.(Bool)
	require.True(t, ok)
	assert.Empty(t, root.Should)
	assert.Zero(t, root.MinimumShouldMatch)
	assert.Empty(t, root.Filter)
	assert.Equal(t, 0, compiled.From)
	assert.Equal(t, 10, compiled.Size)
}

func TestBuildTextClauses(t *testing.T) {
	req := domain.SearchRequest{Query: "dune", Page: 1, PageSize: 10}

	compiled := Build(req)

	root, ok := compiled.Root.(Bool)
	require.True(t, ok)
	require.Len(t, root.Should, 2)
	assert.Equal(t, 1, root.MinimumShouldMatch)

	phrase, ok := root.Should[0].(Phrase)
	require.True(t, ok)
	assert.Equal(t, "dune", phrase.Text)
	assert.Equal(t, PhraseClauseBoost, phrase.ClauseBoost)
	require.Len(t, phrase.Fields, 3)
	assert.Equal(t, BoostedField{Name: "title", Boost: 5}, phrase.Fields[0])
	assert.Equal(t, BoostedField{Name: "author", Boost: 4}, phrase.Fields[1])
	assert.Equal(t, BoostedField{Name: "genre", Boost: 3}, phrase.Fields[2])

	fuzzy, ok := root.Should[1].(Fuzzy)
	require.True(t, ok)
	assert.Equal(t, "dune", fuzzy.Text)
	assert.Equal(t, FuzzinessAuto, fuzzy.Fuzziness)
	assert.Equal(t, FuzzyOperatorAnd, fuzzy.Operator)
	require.Len(t, fuzzy.Fields, 4)
	assert.Equal(t, BoostedField{Name: "summary", Boost: 1}, fuzzy.Fields[3])
}

func TestBuildFilters(t *testing.T) {
	minPrice, maxPrice := 10.0, 15.0
	minYear := 1990

	req := domain.SearchRequest{
		Genres:   []string{"SciFi", "Fantasy"},
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Formats:  []string{"PDF"},
		MinYear:  &minYear,
		Page:     2,
		PageSize: 10,
	}

	compiled := Build(req)

	root, ok := compiled.Root.(Bool)
	require.True(t, ok)
	require.Len(t, root.Filter, 4)

	genres, ok := root.Filter[0].(Terms)
	require.True(t, ok)
	assert.Equal(t, "genre", genres.Field)
	assert.Equal(t, []string{"SciFi", "Fantasy"}, genres.Values)
	assert.True(t, genres.CaseInsensitive)

	price, ok := root.Filter[1].(NumberRange)
	require.True(t, ok)
	assert.Equal(t, "price", price.Field)
	assert.Equal(t, 10.0, *price.Min)
	assert.Equal(t, 15.0, *price.Max)

	formats, ok := root.Filter[2].(Terms)
	require.True(t, ok)
	assert.Equal(t, "format", formats.Field)
	assert.False(t, formats.CaseInsensitive)

	years, ok := root.Filter[3].(NumberRange)
	require.True(t, ok)
	assert.Equal(t, "publishedYear", years.Field)
	assert.Equal(t, 1990.0, *years.Min)
	assert.Nil(t, years.Max)

	assert.Equal(t, 10, compiled.From)
}

func TestBuildOpenEndedPriceRange(t *testing.T) {
	maxPrice := 20.0
	req := domain.SearchRequest{MaxPrice: &maxPrice, Page: 1, PageSize: 10}

	root := Build(req).Root.(Bool)
	require.Len(t, root.Filter, 1)

	price := root.Filter[0].(NumberRange)
	assert.Nil(t, price.Min)
	assert.Equal(t, 20.0, *price.Max)
}

func TestBuildTopBooks(t *testing.T) {
	compiled := BuildTopBooks(10)

	_, ok := compiled.Root.(MatchAll)
	assert.True(t, ok)
	require.Len(t, compiled.Sort, 2)
	assert.Equal(t, SortField{Field: "purchasedCount", Desc: true}, compiled.Sort[0])
	assert.Equal(t, SortField{Field: "id", Desc: false}, compiled.Sort[1])
}

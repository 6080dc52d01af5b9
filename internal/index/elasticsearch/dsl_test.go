package elasticsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

func TestRenderMatchAll(t *testing.T) {
	out := renderClause(query.MatchAll{})
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, out)
}

func TestRenderPhrase(t *testing.T) {
	out := renderClause(query.Phrase{
		Text:        "dune",
		Fields:      query.PhraseFields(),
		ClauseBoost: query.PhraseClauseBoost,
	})

	mm, ok := out["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dune", mm["query"])
	assert.Equal(t, "phrase", mm["type"])
	assert.Equal(t, []string{"title^5", "author^4", "genre^3"}, mm["fields"])
	assert.Equal(t, 3.0, mm["boost"])
}

func TestRenderFuzzy(t *testing.T) {
	out := renderClause(query.Fuzzy{
		Text:      "pricnipito",
		Fields:    query.FuzzyFields(),
		Fuzziness: query.FuzzinessAuto,
		Operator:  query.FuzzyOperatorAnd,
	})

	mm, ok := out["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "best_fields", mm["type"])
	assert.Equal(t, []string{"title^4", "author^3", "genre^2", "summary"}, mm["fields"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
	assert.Equal(t, "and", mm["operator"])
}

func TestRenderTermsCaseInsensitive(t *testing.T) {
	out := renderClause(query.Terms{
		Field:           "genre",
		Values:          []string{"scifi", "fantasy"},
		CaseInsensitive: true,
	})

	b, ok := out["bool"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, b["minimum_should_match"])

	should, ok := b["should"].([]any)
	require.True(t, ok)
	require.Len(t, should, 2)

	first := should[0].(map[string]any)["term"].(map[string]any)["genre"].(map[string]any)
	assert.Equal(t, "scifi", first["value"])
	assert.Equal(t, true, first["case_insensitive"])
}

func TestRenderTermsExact(t *testing.T) {
	out := renderClause(query.Terms{Field: "format", Values: []string{"PDF"}})
	assert.Equal(t, map[string]any{"terms": map[string]any{"format": []string{"PDF"}}}, out)
}

func TestRenderNumberRange(t *testing.T) {
	min := 10.0
	out := renderClause(query.NumberRange{Field: "price", Min: &min})

	r := out["range"].(map[string]any)["price"].(map[string]any)
	assert.Equal(t, 10.0, r["gte"])
	_, hasLte := r["lte"]
	assert.False(t, hasLte)
}

func TestRenderCompiledSearch(t *testing.T) {
	req := domain.SearchRequest{Query: "dune", Page: 2, PageSize: 10}
	body := renderCompiled(query.Build(req))

	assert.Equal(t, 10, body["from"])
	assert.Equal(t, 10, body["size"])
	assert.Equal(t, true, body["track_total_hits"])
	_, hasSort := body["sort"]
	assert.False(t, hasSort)

	b, ok := body["query"].(map[string]any)["bool"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, b["minimum_should_match"])
	require.Len(t, b["should"].([]any), 2)
}

func TestRenderCompiledTopBooksSort(t *testing.T) {
	body := renderCompiled(query.BuildTopBooks(10))

	sort, ok := body["sort"].([]any)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t,
		map[string]any{"purchasedCount": map[string]any{"order": "desc"}},
		sort[0])
	assert.Equal(t,
		map[string]any{"id": map[string]any{"order": "asc"}},
		sort[1])
}

func TestRenderEmptyBoolFallsBackToMatchAll(t *testing.T) {
	out := renderClause(query.Bool{})
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, out)
}

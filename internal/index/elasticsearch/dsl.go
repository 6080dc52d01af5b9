package elasticsearch

import (
	"fmt"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// renderCompiled turns a compiled query into the Elasticsearch request body.
// The query AST is rendered into wire format only here.
func renderCompiled(q query.Compiled) map[string]any {
	body := map[string]any{
		"query":            renderClause(q.Root),
		"from":             q.From,
		"size":             q.Size,
		"track_total_hits": true,
	}

	if len(q.Sort) > 0 {
		sort := make([]any, 0, len(q.Sort))
		for _, s := range q.Sort {
			order := "asc"
			if s.Desc {
				order = "desc"
			}
			sort = append(sort, map[string]any{s.Field: map[string]any{"order": order}})
		}
		body["sort"] = sort
	}

	return body
}

// renderClause renders one AST node into query DSL.
func renderClause(c query.Clause) map[string]any {
	switch v := c.(type) {
	case query.MatchAll:
		return map[string]any{"match_all": map[string]any{}}

	case query.Phrase:
		mm := map[string]any{
			"query":  v.Text,
			"type":   "phrase",
			"fields": boostedFieldSpecs(v.Fields),
		}
		if v.ClauseBoost != 0 {
			mm["boost"] = v.ClauseBoost
		}
		return map[string]any{"multi_match": mm}

	case query.Fuzzy:
		mm := map[string]any{
			"query":  v.Text,
			"type":   "best_fields",
			"fields": boostedFieldSpecs(v.Fields),
		}
		if v.Fuzziness != "" {
			mm["fuzziness"] = v.Fuzziness
		}
		if v.Operator != "" {
			mm["operator"] = v.Operator
		}
		return map[string]any{"multi_match": mm}

	case query.Terms:
		if !v.CaseInsensitive {
			return map[string]any{
				"terms": map[string]any{v.Field: v.Values},
			}
		}
		// Keyword fields are matched exactly; case-insensitive set
		// membership becomes an OR of case-insensitive term queries.
		should := make([]any, 0, len(v.Values))
		for _, value := range v.Values {
			should = append(should, map[string]any{
				"term": map[string]any{
					v.Field: map[string]any{
						"value":            value,
						"case_insensitive": true,
					},
				},
			})
		}
		return map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		}

	case query.NumberRange:
		bounds := map[string]any{}
		if v.Min != nil {
			bounds["gte"] = *v.Min
		}
		if v.Max != nil {
			bounds["lte"] = *v.Max
		}
		return map[string]any{
			"range": map[string]any{v.Field: bounds},
		}

	case query.IDs:
		return map[string]any{
			"ids": map[string]any{"values": v.Values},
		}

	case query.Bool:
		b := map[string]any{}
		if len(v.Should) > 0 {
			b["should"] = renderClauses(v.Should)
		}
		if v.MinimumShouldMatch > 0 {
			b["minimum_should_match"] = v.MinimumShouldMatch
		}
		if len(v.Filter) > 0 {
			b["filter"] = renderClauses(v.Filter)
		}
		if len(v.MustNot) > 0 {
			b["must_not"] = renderClauses(v.MustNot)
		}
		if len(b) == 0 {
			return map[string]any{"match_all": map[string]any{}}
		}
		return map[string]any{"bool": b}

	default:
		// The AST is closed; an unknown variant is a programming error.
		panic(fmt.Sprintf("elasticsearch: unknown query clause %T", c))
	}
}

func renderClauses(cs []query.Clause) []any {
	out := make([]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, renderClause(c))
	}
	return out
}

// boostedFieldSpecs renders fields in "name^boost" form.
func boostedFieldSpecs(fields []query.BoostedField) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Boost != 0 && f.Boost != 1 {
			out = append(out, fmt.Sprintf("%s^%g", f.Name, f.Boost))
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

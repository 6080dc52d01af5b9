package query

import (
	"strings"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
)

// Build translates a search request into a compiled query. The request is
// expected to be normalized (page >= 1, pageSize set) before calling.
func Build(req domain.SearchRequest) Compiled {
	root := Bool{
		Filter: buildFilters(req),
	}

	text := strings.TrimSpace(req.Query)
	if text == "" {
		root.Should = nil
	} else {
		// Phrase and fuzzy are alternatives: a hit on either qualifies,
		// with phrase hits scored well above fuzzy ones.
		root.Should = []Clause{
			Phrase{
				Text:        text,
				Fields:      PhraseFields(),
				ClauseBoost: PhraseClauseBoost,
			},
			Fuzzy{
				Text:      text,
				Fields:    FuzzyFields(),
				Fuzziness: FuzzinessAuto,
				Operator:  FuzzyOperatorAnd,
			},
		}
		root.MinimumShouldMatch = 1
	}

	return Compiled{
		Root: root,
		From: req.Offset(),
		Size: req.PageSize,
	}
}

func buildFilters(req domain.SearchRequest) []Clause {
	var filters []Clause

	if len(req.Genres) > 0 {
		filters = append(filters, Terms{
			Field:           "genre",
			Values:          req.Genres,
			CaseInsensitive: true,
		})
	}

	if req.MinPrice != nil || req.MaxPrice != nil {
		filters = append(filters, NumberRange{
			Field: "price",
			Min:   req.MinPrice,
			Max:   req.MaxPrice,
		})
	}

	if len(req.Formats) > 0 {
		filters = append(filters, Terms{
			Field:  "format",
			Values: req.Formats,
		})
	}

	if req.MinYear != nil || req.MaxYear != nil {
		var min, max *float64
		if req.MinYear != nil {
			v := float64(*req.MinYear)
			min = &v
		}
		if req.MaxYear != nil {
			v := float64(*req.MaxYear)
			max = &v
		}
		filters = append(filters, NumberRange{
			Field: "publishedYear",
			Min:   min,
			Max:   max,
		})
	}

	return filters
}

// BuildTopBooks returns a match-all query sorted by popularity.
func BuildTopBooks(size int) Compiled {
	return Compiled{
		Root: MatchAll{},
		From: 0,
		Size: size,
		Sort: TopBooksSort(),
	}
}

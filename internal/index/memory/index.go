// Package memory provides an in-memory SearchIndex used in tests. It
// interprets the same query AST the Elasticsearch adapter renders, with
// simplified scoring.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	apperrors "github.com/JesusFern/BookLog-ELK-Stack/pkg/errors"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/domain"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/query"
)

// Index is an in-memory implementation of index.SearchIndex backed by a
// mutex-guarded map.
type Index struct {
	mu   sync.RWMutex
	docs map[string]domain.BookDocument
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		docs: make(map[string]domain.BookDocument),
	}
}

// Ping always succeeds.
func (i *Index) Ping(_ context.Context) error {
	return nil
}

// EnsureIndex clears all documents when recreate is set; otherwise it is
// a no-op.
func (i *Index) EnsureIndex(_ context.Context, recreate bool) error {
	if !recreate {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = make(map[string]domain.BookDocument)
	return nil
}

// Upsert maps and stores one book, overwriting any existing document.
func (i *Index) Upsert(_ context.Context, book domain.Book) error {
	doc := domain.NewBookDocument(book)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[doc.ID] = doc
	return nil
}

// UpdateField applies a partial update through the document's JSON form,
// mirroring a partial update against a real index.
func (i *Index) UpdateField(_ context.Context, id, field string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, ok := i.docs[id]
	if !ok {
		return apperrors.NotFound("document", id)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory update: marshal document %s: %w", id, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("memory update: unmarshal document %s: %w", id, err)
	}
	m[field] = value

	patched, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("memory update: marshal patch %s: %w", id, err)
	}
	var updated domain.BookDocument
	if err := json.Unmarshal(patched, &updated); err != nil {
		return fmt.Errorf("memory update: apply patch %s: %w", id, err)
	}

	i.docs[id] = updated
	return nil
}

// BulkUpsert stores every book; in-memory writes cannot partially fail.
func (i *Index) BulkUpsert(_ context.Context, books []domain.Book) (domain.ReindexReport, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, book := range books {
		doc := domain.NewBookDocument(book)
		i.docs[doc.ID] = doc
	}
	return domain.ReindexReport{Indexed: len(books)}, nil
}

// Search interprets the compiled query over the stored documents.
func (i *Index) Search(_ context.Context, q query.Compiled) (index.Hits, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	type scored struct {
		doc   domain.BookDocument
		score float64
	}

	var matched []scored
	for _, doc := range i.docs {
		ok, score := eval(q.Root, doc)
		if ok {
			matched = append(matched, scored{doc: doc, score: score})
		}
	}

	if len(q.Sort) > 0 {
		sort.Slice(matched, func(a, b int) bool {
			for _, s := range q.Sort {
				av, bv := sortKey(matched[a].doc, s.Field), sortKey(matched[b].doc, s.Field)
				if av == bv {
					continue
				}
				if s.Desc {
					return av > bv
				}
				return av < bv
			}
			return matched[a].doc.ID < matched[b].doc.ID
		})
	} else {
		// Relevance order with a deterministic id tie-break.
		sort.Slice(matched, func(a, b int) bool {
			if matched[a].score != matched[b].score {
				return matched[a].score > matched[b].score
			}
			return matched[a].doc.ID < matched[b].doc.ID
		})
	}

	total := len(matched)
	from := q.From
	if from > total {
		from = total
	}
	to := from + q.Size
	if q.Size <= 0 || to > total {
		to = total
	}

	docs := make([]domain.BookDocument, 0, to-from)
	for _, m := range matched[from:to] {
		docs = append(docs, m.doc)
	}

	return index.Hits{Total: total, Docs: docs}, nil
}

// Suggest matches lowercased title prefixes, deduplicated by id.
func (i *Index) Suggest(_ context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	prefix = strings.ToLower(prefix)

	var hits []domain.BookDocument
	for _, doc := range i.docs {
		for _, input := range doc.TitleSuggest.Input {
			if strings.HasPrefix(strings.ToLower(input), prefix) {
				hits = append(hits, doc)
				break
			}
		}
	}

	// Completion order: weight desc, then title, then id.
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].TitleSuggest.Weight != hits[b].TitleSuggest.Weight {
			return hits[a].TitleSuggest.Weight > hits[b].TitleSuggest.Weight
		}
		at, bt := strings.ToLower(hits[a].Title), strings.ToLower(hits[b].Title)
		if at != bt {
			return at < bt
		}
		return hits[a].ID < hits[b].ID
	})

	seen := make(map[string]struct{})
	suggestions := make([]domain.Suggestion, 0, limit)
	for _, doc := range hits {
		if _, exists := seen[doc.ID]; exists {
			continue
		}
		seen[doc.ID] = struct{}{}
		suggestions = append(suggestions, domain.Suggestion{
			ID:            doc.ID,
			Title:         doc.Title,
			Author:        doc.Author,
			CoverImageURL: doc.CoverImageURL,
		})
		if len(suggestions) >= limit {
			break
		}
	}

	return suggestions, nil
}

// Related scores documents by term overlap with the seed's genre, author,
// and summary, weighted like the similarity query. The seed is excluded.
func (i *Index) Related(_ context.Context, id string, limit int) ([]domain.BookDocument, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	seed, ok := i.docs[id]
	if !ok {
		return nil, apperrors.NotFound("document", id)
	}

	seedTerms := map[string]float64{}
	addTerms(seedTerms, seed.Genre, query.RelatedGenreBoost)
	addTerms(seedTerms, seed.Author, query.RelatedAuthorBoost)
	addTerms(seedTerms, seed.Summary, query.RelatedSummaryBoost)

	type scored struct {
		doc   domain.BookDocument
		score float64
	}

	var matched []scored
	for _, doc := range i.docs {
		if doc.ID == id {
			continue
		}
		var score float64
		docTerms := map[string]struct{}{}
		for _, tok := range tokenize(doc.Genre + " " + doc.Author + " " + doc.Summary) {
			docTerms[tok] = struct{}{}
		}
		for term, weight := range seedTerms {
			if _, hit := docTerms[term]; hit {
				score += weight
			}
		}
		if score > 0 {
			matched = append(matched, scored{doc: doc, score: score})
		}
	}

	sort.Slice(matched, func(a, b int) bool {
		if matched[a].score != matched[b].score {
			return matched[a].score > matched[b].score
		}
		return matched[a].doc.ID < matched[b].doc.ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	docs := make([]domain.BookDocument, 0, len(matched))
	for _, m := range matched {
		docs = append(docs, m.doc)
	}
	return docs, nil
}

// Facets counts every filterable value across the stored documents.
func (i *Index) Facets(_ context.Context) (domain.Facets, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	formats := map[string]int{}
	genres := map[string]int{}
	years := map[string]int{}

	var priceSum float64
	var priceMin, priceMax float64
	first := true

	for _, doc := range i.docs {
		for _, f := range doc.Format {
			formats[string(f)]++
		}
		if doc.Genre != "" {
			genres[doc.Genre]++
		}
		if doc.PublishedYear != nil {
			years[fmt.Sprintf("%d", *doc.PublishedYear)]++
		}

		priceSum += doc.Price
		if first || doc.Price < priceMin {
			priceMin = doc.Price
		}
		if first || doc.Price > priceMax {
			priceMax = doc.Price
		}
		first = false
	}

	facets := domain.Facets{
		Formats:          toBuckets(formats, false),
		Genres:           toBuckets(genres, false),
		PublicationYears: toBuckets(years, true),
	}
	if n := len(i.docs); n > 0 {
		facets.PriceRange = domain.PriceStats{
			Min: priceMin,
			Max: priceMax,
			Avg: priceSum / float64(n),
		}
	}
	return facets, nil
}

// toBuckets renders counts the way a terms aggregation orders them:
// count descending with value ascending as tie-break, or key descending
// for year-like dimensions.
func toBuckets(counts map[string]int, keyDesc bool) []domain.FacetBucket {
	buckets := make([]domain.FacetBucket, 0, len(counts))
	for value, count := range counts {
		buckets = append(buckets, domain.FacetBucket{Value: value, Count: count})
	}
	sort.Slice(buckets, func(a, b int) bool {
		if keyDesc {
			return buckets[a].Value > buckets[b].Value
		}
		if buckets[a].Count != buckets[b].Count {
			return buckets[a].Count > buckets[b].Count
		}
		return buckets[a].Value < buckets[b].Value
	})
	return buckets
}

// eval reports whether the document matches the clause and its score
// contribution.
func eval(c query.Clause, doc domain.BookDocument) (bool, float64) {
	switch v := c.(type) {
	case query.MatchAll:
		return true, 1

	case query.Phrase:
		phrase := strings.ToLower(strings.TrimSpace(v.Text))
		var best float64
		for _, f := range v.Fields {
			if strings.Contains(strings.ToLower(textField(doc, f.Name)), phrase) && f.Boost > best {
				best = f.Boost
			}
		}
		if best == 0 {
			return false, 0
		}
		boost := v.ClauseBoost
		if boost == 0 {
			boost = 1
		}
		return true, best * boost

	case query.Fuzzy:
		terms := tokenize(v.Text)
		if len(terms) == 0 {
			return false, 0
		}
		var score float64
		for _, term := range terms {
			var termBest float64
			for _, f := range v.Fields {
				for _, tok := range tokenize(textField(doc, f.Name)) {
					if fuzzyEqual(term, tok) && f.Boost > termBest {
						termBest = f.Boost
					}
				}
			}
			if termBest == 0 {
				// Operator AND: every term must match somewhere.
				return false, 0
			}
			score += termBest
		}
		return true, score

	case query.Terms:
		for _, want := range v.Values {
			for _, have := range keywordField(doc, v.Field) {
				if v.CaseInsensitive && strings.EqualFold(want, have) {
					return true, 0
				}
				if !v.CaseInsensitive && want == have {
					return true, 0
				}
			}
		}
		return false, 0

	case query.NumberRange:
		value, ok := numberField(doc, v.Field)
		if !ok {
			return false, 0
		}
		if v.Min != nil && value < *v.Min {
			return false, 0
		}
		if v.Max != nil && value > *v.Max {
			return false, 0
		}
		return true, 0

	case query.IDs:
		for _, want := range v.Values {
			if doc.ID == want {
				return true, 0
			}
		}
		return false, 0

	case query.Bool:
		for _, f := range v.Filter {
			if ok, _ := eval(f, doc); !ok {
				return false, 0
			}
		}
		for _, mn := range v.MustNot {
			if ok, _ := eval(mn, doc); ok {
				return false, 0
			}
		}
		if len(v.Should) == 0 {
			return true, 1
		}
		var matchCount int
		var score float64
		for _, s := range v.Should {
			if ok, sc := eval(s, doc); ok {
				matchCount++
				score += sc
			}
		}
		min := v.MinimumShouldMatch
		if min == 0 {
			min = 1
		}
		if matchCount < min {
			return false, 0
		}
		return true, score

	default:
		panic(fmt.Sprintf("memory: unknown query clause %T", c))
	}
}

func textField(doc domain.BookDocument, field string) string {
	switch field {
	case "title":
		return doc.Title
	case "author":
		return doc.Author
	case "genre":
		return doc.Genre
	case "summary":
		return doc.Summary
	case "language":
		return doc.Language
	default:
		return ""
	}
}

func keywordField(doc domain.BookDocument, field string) []string {
	switch field {
	case "genre":
		return []string{doc.Genre}
	case "language":
		return []string{doc.Language}
	case "format":
		out := make([]string, 0, len(doc.Format))
		for _, f := range doc.Format {
			out = append(out, string(f))
		}
		return out
	case "id":
		return []string{doc.ID}
	default:
		return nil
	}
}

func numberField(doc domain.BookDocument, field string) (float64, bool) {
	switch field {
	case "price":
		return doc.Price, true
	case "purchasedCount":
		return float64(doc.PurchasedCount), true
	case "publishedYear":
		if doc.PublishedYear == nil {
			return 0, false
		}
		return float64(*doc.PublishedYear), true
	case "numPages":
		if doc.NumPages == nil {
			return 0, false
		}
		return float64(*doc.NumPages), true
	default:
		return 0, false
	}
}

// sortKey renders a field as an orderable string. Numeric fields are
// zero-padded so lexicographic order matches numeric order.
func sortKey(doc domain.BookDocument, field string) string {
	if n, ok := numberField(doc, field); ok {
		return fmt.Sprintf("%020.4f", n)
	}
	switch field {
	case "id":
		return doc.ID
	case "createdAt":
		return doc.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")
	default:
		return textField(doc, field)
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func addTerms(dst map[string]float64, text string, weight float64) {
	for _, tok := range tokenize(text) {
		if dst[tok] < weight {
			dst[tok] = weight
		}
	}
}

// fuzzyEqual mimics AUTO fuzziness: edit distance 0 for terms shorter
// than 3 runes, 1 up to 5 runes, 2 beyond.
func fuzzyEqual(a, b string) bool {
	if a == b {
		return true
	}
	n := len([]rune(a))
	var max int
	switch {
	case n < 3:
		max = 0
	case n <= 5:
		max = 1
	default:
		max = 2
	}
	if max == 0 {
		return false
	}
	return levenshtein(a, b) <= max
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minOf(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

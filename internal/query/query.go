// Package query defines a small query AST built from search requests and
// rendered into the index's wire format only at the index boundary.
package query

// Clause is one node of the query AST. Implementations are closed: the
// index adapters switch over the concrete variants.
type Clause interface {
	isClause()
}

// MatchAll matches every document.
type MatchAll struct{}

// BoostedField names an index field together with its relevance boost.
type BoostedField struct {
	Name  string
	Boost float64
}

// Phrase is a phrase-type multi-field match: every query term must appear
// in order in at least one of the fields. ClauseBoost scales the whole
// clause relative to its siblings.
type Phrase struct {
	Text        string
	Fields      []BoostedField
	ClauseBoost float64
}

// Fuzzy is a best-fields multi-field match with edit-distance tolerance.
// Operator "and" requires all query terms to match.
type Fuzzy struct {
	Text      string
	Fields    []BoostedField
	Fuzziness string
	Operator  string
}

// Terms filters documents whose field holds any of the given values.
// CaseInsensitive compares values ignoring case.
type Terms struct {
	Field           string
	Values          []string
	CaseInsensitive bool
}

// NumberRange filters on an inclusive numeric range; a nil bound leaves
// that side unbounded.
type NumberRange struct {
	Field string
	Min   *float64
	Max   *float64
}

// IDs filters documents by exact id.
type IDs struct {
	Values []string
}

// Bool combines clauses. Filter clauses are conjunctive and non-scoring;
// Should clauses are alternatives of which MinimumShouldMatch must hold;
// MustNot clauses exclude.
type Bool struct {
	Should             []Clause
	MinimumShouldMatch int
	Filter             []Clause
	MustNot            []Clause
}

func (MatchAll) isClause()    {}
func (Phrase) isClause()      {}
func (Fuzzy) isClause()       {}
func (Terms) isClause()       {}
func (NumberRange) isClause() {}
func (IDs) isClause()         {}
func (Bool) isClause()        {}

// SortField orders results on a field; when Desc is false the order is
// ascending. An empty sort list means relevance order.
type SortField struct {
	Field string
	Desc  bool
}

// Compiled is a fully shaped query ready for execution: the root clause,
// pagination window, and an optional explicit sort.
type Compiled struct {
	Root Clause
	From int
	Size int
	Sort []SortField
}

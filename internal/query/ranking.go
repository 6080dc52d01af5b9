package query

// Ranking constants. All boosts, fuzziness settings, and result caps live
// here so tuning never touches query-construction logic.

// Phrase clause: exact in-order term matches over the headline fields,
// scaled up so phrase hits dominate fuzzy ones.
const (
	PhraseTitleBoost  = 5.0
	PhraseAuthorBoost = 4.0
	PhraseGenreBoost  = 3.0
	PhraseClauseBoost = 3.0
)

// Fuzzy clause: best-fields match with edit-distance tolerance that scales
// with term length. All terms must match.
const (
	FuzzyTitleBoost   = 4.0
	FuzzyAuthorBoost  = 3.0
	FuzzyGenreBoost   = 2.0
	FuzzySummaryBoost = 1.0
	FuzzinessAuto     = "AUTO"
	FuzzyOperatorAnd  = "and"
)

// Result caps for the auxiliary query paths.
const (
	SuggestLimit = 5
	RelatedLimit = 5
)

// Related-item similarity: field weights and term thresholds for the
// more-like-this query.
const (
	RelatedGenreBoost   = 3.0
	RelatedAuthorBoost  = 2.0
	RelatedSummaryBoost = 1.0
	RelatedMinTermFreq  = 2
	RelatedMaxTerms     = 12
)

// PhraseFields returns the boosted field set for the phrase clause.
func PhraseFields() []BoostedField {
	return []BoostedField{
		{Name: "title", Boost: PhraseTitleBoost},
		{Name: "author", Boost: PhraseAuthorBoost},
		{Name: "genre", Boost: PhraseGenreBoost},
	}
}

// FuzzyFields returns the boosted field set for the fuzzy clause.
func FuzzyFields() []BoostedField {
	return []BoostedField{
		{Name: "title", Boost: FuzzyTitleBoost},
		{Name: "author", Boost: FuzzyAuthorBoost},
		{Name: "genre", Boost: FuzzyGenreBoost},
		{Name: "summary", Boost: FuzzySummaryBoost},
	}
}

// RelatedFields returns the boosted field set for the similarity query.
func RelatedFields() []BoostedField {
	return []BoostedField{
		{Name: "genre", Boost: RelatedGenreBoost},
		{Name: "author", Boost: RelatedAuthorBoost},
		{Name: "summary", Boost: RelatedSummaryBoost},
	}
}

// TopBooksSort orders by popularity with a deterministic id tie-break.
func TopBooksSort() []SortField {
	return []SortField{
		{Field: "purchasedCount", Desc: true},
		{Field: "id", Desc: false},
	}
}

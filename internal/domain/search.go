package domain

// SearchRequest holds all parameters for a catalog search.
type SearchRequest struct {
	Query    string   `json:"query"`
	Genres   []string `json:"genres,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	MinYear  *int     `json:"minYear,omitempty"`
	MaxYear  *int     `json:"maxYear,omitempty"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

// Normalize clamps out-of-range pagination values. Pages below 1 are
// clamped to 1 rather than rejected.
func (r *SearchRequest) Normalize(defaultPageSize int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = defaultPageSize
	}
}

// Offset returns the zero-based result offset for the request's page.
func (r *SearchRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SearchResult holds the paginated search response.
type SearchResult struct {
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"totalPages"`
	Results    []BookDocument `json:"results"`
	Facets     *Facets        `json:"facets,omitempty"`
}

// TotalPagesFor computes ceil(total/pageSize); zero when total is zero.
func TotalPagesFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Suggestion is a single autocomplete entry.
type Suggestion struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverImageURL string `json:"coverImageUrl"`
}

// FacetBucket is one distinct value of a filterable dimension with its
// document count.
type FacetBucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PriceStats summarizes the price distribution across the whole index.
type PriceStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Facets holds the filterable dimensions of the catalog. Counts are real
// per-value aggregations computed by the index.
type Facets struct {
	Formats          []FacetBucket `json:"formats"`
	Genres           []FacetBucket `json:"genres"`
	PriceRange       PriceStats    `json:"priceRange"`
	PublicationYears []FacetBucket `json:"publicationYears"`
}

// ReindexReport aggregates the outcome of a bulk reindex. FailedIDs lists
// the documents that could not be written; successes are not rolled back.
type ReindexReport struct {
	Indexed   int      `json:"indexed"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

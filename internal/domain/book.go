package domain

import (
	"time"
)

// Format is a downloadable book format.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatEPUB Format = "EPUB"
	FormatMOBI Format = "MOBI"
)

// ValidFormats returns the list of supported formats.
func ValidFormats() []Format {
	return []Format{FormatPDF, FormatEPUB, FormatMOBI}
}

// IsValidFormat checks whether the given string is a supported format.
func IsValidFormat(s string) bool {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Book is the authoritative catalog record, owned by the primary store.
type Book struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Author         string            `json:"author"`
	Genre          string            `json:"genre"`
	Summary        string            `json:"summary"`
	Language       string            `json:"language"`
	Price          float64           `json:"price"`
	Formats        []Format          `json:"formats"`
	CoverImageURL  string            `json:"coverImageUrl"`
	DownloadURLs   map[Format]string `json:"downloadUrls"`
	PublishedYear  *int              `json:"publishedYear,omitempty"`
	NumPages       *int              `json:"numPages,omitempty"`
	PurchasedCount int               `json:"purchasedCount"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// TitleSuggest is the completion-suggester payload stored alongside each
// document. Weight biases more heavily weighted titles to the top of the
// suggestion list.
type TitleSuggest struct {
	Input  []string `json:"input"`
	Weight int      `json:"weight"`
}

// BookDocument is the denormalized search-index projection of a Book.
// Its id always equals the source Book's id.
type BookDocument struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	TitleSuggest   TitleSuggest      `json:"titleSuggest"`
	Author         string            `json:"author"`
	Genre          string            `json:"genre"`
	Summary        string            `json:"summary"`
	Language       string            `json:"language"`
	Price          float64           `json:"price"`
	Format         []Format          `json:"format"`
	CoverImageURL  string            `json:"coverImageUrl"`
	DownloadURLs   map[Format]string `json:"downloadUrls"`
	PublishedYear  *int              `json:"publishedYear,omitempty"`
	NumPages       *int              `json:"numPages,omitempty"`
	PurchasedCount int               `json:"purchasedCount"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// titleSuggestWeight is the fixed completion weight applied to every title.
const titleSuggestWeight = 10

// NewBookDocument projects a Book into its index document. It is pure:
// no side effects, never fails, and never drops a mapped field. A negative
// purchased count is coerced to zero.
func NewBookDocument(book Book) BookDocument {
	count := book.PurchasedCount
	if count < 0 {
		count = 0
	}

	return BookDocument{
		ID:    book.ID,
		Title: book.Title,
		TitleSuggest: TitleSuggest{
			Input:  []string{book.Title},
			Weight: titleSuggestWeight,
		},
		Author:         book.Author,
		Genre:          book.Genre,
		Summary:        book.Summary,
		Language:       book.Language,
		Price:          book.Price,
		Format:         book.Formats,
		CoverImageURL:  book.CoverImageURL,
		DownloadURLs:   book.DownloadURLs,
		PublishedYear:  book.PublishedYear,
		NumPages:       book.NumPages,
		PurchasedCount: count,
		CreatedAt:      book.CreatedAt,
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBookDocument(t *testing.T) {
	year := 1965
	pages := 412
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	book := Book{
		ID:            "b1",
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genre:         "SciFi",
		Summary:       "A desert planet and its spice.",
		Language:      "en",
		Price:         12.50,
		Formats:       []Format{FormatPDF, FormatEPUB},
		CoverImageURL: "https://covers.example/dune.jpg",
		DownloadURLs: map[Format]string{
			FormatPDF:  "https://files.example/dune.pdf",
			FormatEPUB: "https://files.example/dune.epub",
		},
		PublishedYear:  &year,
		NumPages:       &pages,
		PurchasedCount: 7,
		CreatedAt:      created,
	}

	doc := NewBookDocument(book)

	assert.Equal(t, book.ID, doc.ID)
	assert.Equal(t, book.Title, doc.Title)
	assert.Equal(t, []string{"Dune"}, doc.TitleSuggest.Input)
	assert.Equal(t, 10, doc.TitleSuggest.Weight)
	assert.Equal(t, book.Author, doc.Author)
	assert.Equal(t, book.Genre, doc.Genre)
	assert.Equal(t, book.Summary, doc.Summary)
	assert.Equal(t, book.Language, doc.Language)
	assert.Equal(t, book.Price, doc.Price)
	assert.Equal(t, book.Formats, doc.Format)
	assert.Equal(t, book.CoverImageURL, doc.CoverImageURL)
	assert.Equal(t, book.DownloadURLs, doc.DownloadURLs)
	assert.Equal(t, &year, doc.PublishedYear)
	assert.Equal(t, &pages, doc.NumPages)
	assert.Equal(t, 7, doc.PurchasedCount)
	assert.Equal(t, created, doc.CreatedAt)
}

func TestNewBookDocumentCoercesPurchasedCount(t *testing.T) {
	doc := NewBookDocument(Book{ID: "b2", Title: "Untracked", PurchasedCount: -3})
	assert.Equal(t, 0, doc.PurchasedCount)
}

func TestTotalPagesFor(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{"empty", 0, 10, 0},
		{"exact", 20, 10, 2},
		{"remainder", 21, 10, 3},
		{"single", 1, 10, 1},
		{"zero page size", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPagesFor(tt.total, tt.pageSize))
		})
	}
}

func TestSearchRequestNormalize(t *testing.T) {
	req := SearchRequest{Page: -2}
	req.Normalize(10)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.PageSize)
	assert.Equal(t, 0, req.Offset())

	req = SearchRequest{Page: 3, PageSize: 20}
	req.Normalize(10)
	assert.Equal(t, 40, req.Offset())
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, IsValidFormat("PDF"))
	assert.True(t, IsValidFormat("EPUB"))
	assert.True(t, IsValidFormat("MOBI"))
	assert.False(t, IsValidFormat("pdf"))
	assert.False(t, IsValidFormat("DOCX"))
}

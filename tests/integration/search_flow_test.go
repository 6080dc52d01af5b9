package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

// TestBookSearchFlow exercises the full catalog-to-search path against a
// running service: create a book, find it by search and suggestion, purchase
// it, and confirm the purchase count is reflected.
func TestBookSearchFlow(t *testing.T) {
	skipIfNotRunning(t)

	title := uniqueTitle("Integration Voyage")
	payload := map[string]interface{}{
		"title":   title,
		"author":  "Ada Integration",
		"genre":   "Science Fiction",
		"summary": "A voyage written only to be found again by the search tests.",
		"price":   9.99,
		"formats": []string{"EPUB", "PDF"},
	}

	status, body := httpPost(t, serviceURL()+"/api/v1/books/", payload)
	if status != http.StatusCreated {
		t.Fatalf("create book: expected 201, got %d (%v)", status, body)
	}
	book := dataOf(t, body)
	bookID, _ := book["id"].(string)
	if bookID == "" {
		t.Fatal("created book has no id")
	}

	t.Run("search finds the new book", func(t *testing.T) {
		q := url.QueryEscape(title)
		status, body := httpGet(t, serviceURL()+"/api/v1/search?query="+q)
		if status != http.StatusOK {
			t.Fatalf("search: expected 200, got %d", status)
		}
		data := dataOf(t, body)
		results, _ := data["results"].([]interface{})
		if len(results) == 0 {
			t.Fatalf("search for %q returned no results", title)
		}
		first, _ := results[0].(map[string]interface{})
		if first["id"] != bookID {
			t.Errorf("expected %s first, got %v", bookID, first["id"])
		}
		if data["facets"] == nil {
			t.Error("search response missing facets")
		}
	})

	t.Run("suggest completes the title prefix", func(t *testing.T) {
		prefix := url.QueryEscape(title[:12])
		status, body := httpGet(t, serviceURL()+"/api/v1/search/suggest?q="+prefix)
		if status != http.StatusOK {
			t.Fatalf("suggest: expected 200, got %d", status)
		}
		data := dataOf(t, body)
		suggestions, _ := data["suggestions"].([]interface{})
		found := false
		for _, s := range suggestions {
			if m, ok := s.(map[string]interface{}); ok && m["id"] == bookID {
				found = true
			}
		}
		if !found {
			t.Errorf("suggestions did not include the new book: %v", suggestions)
		}
	})

	t.Run("purchase increments the count", func(t *testing.T) {
		status, body := httpPost(t,
			fmt.Sprintf("%s/api/v1/books/%s/purchase", serviceURL(), bookID), nil)
		if status != http.StatusOK {
			t.Fatalf("purchase: expected 200, got %d (%v)", status, body)
		}
		data := dataOf(t, body)
		if count, _ := data["purchasedCount"].(float64); count < 1 {
			t.Errorf("expected purchasedCount >= 1, got %v", data["purchasedCount"])
		}
	})

	t.Run("facets include the book's genre", func(t *testing.T) {
		status, body := httpGet(t, serviceURL()+"/api/v1/search/facets")
		if status != http.StatusOK {
			t.Fatalf("facets: expected 200, got %d", status)
		}
		data := dataOf(t, body)
		if data["genres"] == nil {
			t.Error("facets response missing genres")
		}
	})
}

// TestSearchValidation checks that malformed query parameters are rejected
// before any index round trip.
func TestSearchValidation(t *testing.T) {
	skipIfNotRunning(t)

	for name, target := range map[string]string{
		"non-numeric price": "/api/v1/search?minPrice=cheap",
		"unknown format":    "/api/v1/search?formats=DOCX",
	} {
		t.Run(name, func(t *testing.T) {
			status, _ := httpGet(t, serviceURL()+target)
			if status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}
}

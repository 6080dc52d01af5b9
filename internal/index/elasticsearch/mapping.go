package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for book documents.
const DefaultIndexName = "books"

// buildIndexMapping returns the full JSON mapping for the books index.
// Field types are fixed; documents are homogeneous by contract.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "title":          { "type": "text" },
      "titleSuggest":   { "type": "completion" },
      "author":         { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "genre":          { "type": "keyword" },
      "summary":        { "type": "text" },
      "language":       { "type": "keyword" },
      "price":          { "type": "float" },
      "format":         { "type": "keyword" },
      "coverImageUrl":  { "type": "text", "index": false },
      "downloadUrls": {
        "properties": {
          "PDF":  { "type": "text", "index": false },
          "EPUB": { "type": "text", "index": false },
          "MOBI": { "type": "text", "index": false }
        }
      },
      "publishedYear":  { "type": "integer" },
      "numPages":       { "type": "integer" },
      "purchasedCount": { "type": "integer" },
      "createdAt":      { "type": "date" }
    }
  }
}`
}

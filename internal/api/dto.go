package api

import "github.com/bylinehq/byline/internal/articleservice"

// ArticleDetail is the full article response type (aliased from the domain layer).
type ArticleDetail = articleservice.ArticleDetail

// ArticleListItem is a lightweight item in a list response (aliased from the domain layer).
type ArticleListItem = articleservice.ArticleListItem

// ArticleListResponse wraps paginated article listings.
type ArticleListResponse struct {
	Articles []ArticleListItem `json:"articles"`
	Total    int               `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

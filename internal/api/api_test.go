package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bylinehq/byline/internal/articleservice"
	"github.com/bylinehq/byline/internal/index"
	"github.com/bylinehq/byline/internal/sse"
	"github.com/bylinehq/byline/internal/testutil"
)

const publishedArticle = `---
title: Channels in Practice
published: true
published_at: "2025-01-20T10:00:00Z"
tags: [go, concurrency]
description: A guide to channels
---
Body about channels with a uniquetoken inside.
`

const draftArticle = `---
title: Work in Progress
published: false
password: s3cret
---
Draft body.
`

// testEnv seeds a content dir, syncs the index, and returns a router.
// authToken="" means auth disabled.
func testEnv(t *testing.T, authToken string, articles map[string]string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken, articles, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, articles map[string]string, sseHandler http.Handler) http.Handler {
	t.Helper()
	dir, st := testutil.TestContentDir(t)
	db := testutil.TestDB(t)
	for rel, content := range articles {
		testutil.WriteArticle(t, dir, rel, content)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(db, st, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	svc := articleservice.NewService(st, db, "byline.example.com", nil)
	return NewRouter(svc, authToken != "", authToken, sseHandler)
}

func TestGetArticleEndpoint(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/articles/alice/channels", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ArticleDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Title != "Channels in Practice" {
		t.Errorf("title = %q", detail.Title)
	}
	if detail.URL != "https://byline.example.com/alice/channels" {
		t.Errorf("url = %q", detail.URL)
	}
	if detail.Description != "A guide to channels. Tagged with go, concurrency." {
		t.Errorf("description = %q", detail.Description)
	}
}

func TestGetArticleEndpoint_NotFound(t *testing.T) {
	router := testEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/articles/alice/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing article = %d, want 404", w.Code)
	}
}

func TestGetArticleEndpoint_Projection(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
	})

	req := httptest.NewRequest(http.MethodGet,
		"/articles/alice/channels?only=title,slug&methods=url,comments_to_show_count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("projection status = %d, body = %s", w.Code, w.Body.String())
	}
	var got map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got) != 4 {
		t.Fatalf("got %d keys: %v", len(got), got)
	}
	if got["title"] != "Channels in Practice" || got["slug"] != "channels" {
		t.Errorf("fields = %v", got)
	}
	if got["url"] != "https://byline.example.com/alice/channels" {
		t.Errorf("url = %v", got["url"])
	}
	if got["comments_to_show_count"] != float64(25) {
		t.Errorf("comments_to_show_count = %v", got["comments_to_show_count"])
	}
}

func TestGetArticleEndpoint_UnknownProjectionName(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/articles/alice/channels?only=bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown projection name = %d, want 400", w.Code)
	}
}

func TestListArticlesEndpoint(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
		"alice/wip.md":      draftArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/articles?limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	articles := resp["articles"].([]any)
	if len(articles) != 1 {
		t.Errorf("len(articles) = %d, want 1 (drafts excluded by default)", len(articles))
	}
	if resp["total"] != float64(1) {
		t.Errorf("total = %v", resp["total"])
	}

	// drafts=true includes unpublished articles.
	req = httptest.NewRequest(http.MethodGet, "/articles?limit=10&drafts=true", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	articles = resp["articles"].([]any)
	if len(articles) != 2 {
		t.Errorf("len(articles) with drafts = %d, want 2", len(articles))
	}
}

func TestListArticlesEndpoint_Projection(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
		"alice/wip.md":      draftArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/articles?methods=current_state_path", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list projection = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	articles := resp["articles"].([]any)
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1", len(articles))
	}
	first := articles[0].(map[string]any)
	if first["current_state_path"] != "/alice/channels" {
		t.Errorf("current_state_path = %v", first["current_state_path"])
	}
}

func TestListArticlesEndpoint_TagFilter(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/articles?tag=concurrency", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["total"] != float64(1) {
		t.Errorf("tag filter total = %v, want 1", resp["total"])
	}

	req = httptest.NewRequest(http.MethodGet, "/articles?tag=ruby", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["total"] != float64(0) {
		t.Errorf("unmatched tag total = %v, want 0", resp["total"])
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "", map[string]string{
		"alice/channels.md": publishedArticle,
	})

	req := httptest.NewRequest(http.MethodGet, "/search?q=uniquetoken", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("search results = %d, want 1", len(results))
	}
	hit := results[0].(map[string]any)
	if hit["path"] != "alice/channels.md" {
		t.Errorf("hit = %v", hit)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123", nil)

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123", nil)

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123", nil)

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	router := testEnvWithSSE(t, "secret", nil, broker)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	router := testEnvWithSSE(t, "tok", nil, broker)

	// SSE handler writes headers and blocks, so bound the request lifetime.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

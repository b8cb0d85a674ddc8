package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\npublished: true\ntags:\n  - go\n  - web\ndescription: A greeting\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if !r.Published {
		t.Error("published should be true")
	}
	if r.Description != "A greeting" {
		t.Errorf("description = %q", r.Description)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Body != string(input) {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestParse_TagsCommaString(t *testing.T) {
	r, err := Parse([]byte("---\ntags: discuss, python\n---\nbody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "discuss" || r.Tags[1] != "python" {
		t.Errorf("tags = %v, want [discuss python]", r.Tags)
	}
}

func TestParse_TagsSpaceString(t *testing.T) {
	r, err := Parse([]byte("---\ntags: discuss python\n---\nbody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "discuss" || r.Tags[1] != "python" {
		t.Errorf("tags = %v, want [discuss python]", r.Tags)
	}
}

func TestParse_ArticleFields(t *testing.T) {
	input := []byte(`---
title: Video post
published: false
password: s3cret
canonical_url: https://elsewhere.com/post
organization: acme
boosted: true
seo_description: Exact text
video_code: v1
video_source_url: https://v.example.com/src.mp4
video_thumbnail_url: https://v.example.com/thumb.jpg
video_closed_caption_track_url: https://v.example.com/cc.vtt
---
body`)
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Password != "s3cret" {
		t.Errorf("password = %q", r.Password)
	}
	if r.CanonicalURL != "https://elsewhere.com/post" {
		t.Errorf("canonical_url = %q", r.CanonicalURL)
	}
	if r.Organization != "acme" || !r.Boosted {
		t.Errorf("organization/boosted = %q/%v", r.Organization, r.Boosted)
	}
	if r.SEODescription != "Exact text" {
		t.Errorf("seo_description = %q", r.SEODescription)
	}
	if r.VideoCode != "v1" || r.VideoThumbnailURL != "https://v.example.com/thumb.jpg" {
		t.Errorf("video fields = %q/%q", r.VideoCode, r.VideoThumbnailURL)
	}
}

func TestParse_PublishedAtFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`"2025-01-20T10:00:00Z"`, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)},
		{`"2025-01-20"`, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		r, err := Parse([]byte("---\npublished_at: " + tc.raw + "\n---\nbody"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.PublishedAt == nil {
			t.Fatalf("published_at %s not parsed", tc.raw)
		}
		if !r.PublishedAt.Equal(tc.want) {
			t.Errorf("published_at = %v, want %v", r.PublishedAt, tc.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	md := "# Heading\n\nSome **bold** and _italic_ text with a [link](https://x.com) and `code`.\n\n```go\nfmt.Println(\"skipped\")\n```\n\n> quoted line\n\n![alt](https://img.example.com/a.png)\n"
	got := PlainText(md)
	want := "Heading Some bold and italic text with a link and code. quoted line"
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestPlainText_Empty(t *testing.T) {
	if got := PlainText("\n\n  \n"); got != "" {
		t.Errorf("PlainText = %q, want empty", got)
	}
}

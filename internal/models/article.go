// Package models defines the domain types for Byline.
package models

import "time"

// Organization is the organization an article is published under, if any.
type Organization struct {
	Slug string `json:"slug"`
}

// Article is an immutable snapshot of a content article. It is read-only to
// the presentation core; all derived values are computed from it on demand.
type Article struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	BodyMarkdown string `json:"body_markdown"`

	// CanonicalURL may carry leading/trailing whitespace as authored.
	CanonicalURL string `json:"canonical_url,omitempty"`

	Slug     string `json:"slug"`
	Username string `json:"username"`

	Published bool `json:"published"`
	// Password is the draft preview token; meaningful only when Published is false.
	Password string `json:"-"`

	// CachedTagList is the authoritative comma-separated tag snapshot.
	CachedTagList string `json:"cached_tag_list"`

	BoostedAdditionalArticles bool          `json:"boosted_additional_articles"`
	Organization              *Organization `json:"organization,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`

	// SearchOptimizedDescriptionReplacement overrides any generated description.
	SearchOptimizedDescriptionReplacement string `json:"search_optimized_description_replacement,omitempty"`

	VideoCode                  string `json:"video_code,omitempty"`
	VideoSourceURL             string `json:"video_source_url,omitempty"`
	VideoThumbnailURL          string `json:"video_thumbnail_url,omitempty"`
	VideoClosedCaptionTrackURL string `json:"video_closed_caption_track_url,omitempty"`

	// Path is the precomputed base path, e.g. /username/slug.
	Path string `json:"path"`
}

// VideoMetadata is the projection of an article's video fields. The thumbnail
// URL is the CDN-transformed value, everything else passes through unchanged.
type VideoMetadata struct {
	ID                         string `json:"id"`
	VideoCode                  string `json:"video_code"`
	VideoSourceURL             string `json:"video_source_url"`
	VideoThumbnailURL          string `json:"video_thumbnail_url"`
	VideoClosedCaptionTrackURL string `json:"video_closed_caption_track_url"`
}

// ArticleMetadata is a lightweight representation returned by list operations.
type ArticleMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

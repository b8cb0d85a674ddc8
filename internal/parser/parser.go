// Package parser extracts YAML front matter and plain body text from
// Markdown article sources.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s?`)
	emphasisRe   = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
)

// Result holds the output of parsing an article source file.
type Result struct {
	Frontmatter    map[string]interface{}
	Body           string // Markdown body with front matter removed
	PlainBody      string // body reduced to plain text
	ID             string
	Title          string
	Slug           string
	Description    string
	Tags           []string
	Published      bool
	PublishedAt    *time.Time
	CanonicalURL   string
	Password       string // draft preview token
	Organization   string // organization slug
	Boosted        bool
	SEODescription string

	VideoCode                  string
	VideoSourceURL             string
	VideoThumbnailURL          string
	VideoClosedCaptionTrackURL string
}

// Parse extracts front matter, body, and article fields from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter:    fm,
		Body:           body,
		PlainBody:      PlainText(body),
		ID:             fmString(fm, "id"),
		Title:          fmString(fm, "title"),
		Slug:           fmString(fm, "slug"),
		Description:    fmString(fm, "description"),
		Tags:           fmTags(fm),
		Published:      fmBool(fm, "published"),
		PublishedAt:    fmTime(fm, "published_at"),
		CanonicalURL:   fmString(fm, "canonical_url"),
		Password:       fmString(fm, "password"),
		Organization:   fmString(fm, "organization"),
		Boosted:        fmBool(fm, "boosted"),
		SEODescription: fmString(fm, "seo_description"),

		VideoCode:                  fmString(fm, "video_code"),
		VideoSourceURL:             fmString(fm, "video_source_url"),
		VideoThumbnailURL:          fmString(fm, "video_thumbnail_url"),
		VideoClosedCaptionTrackURL: fmString(fm, "video_closed_caption_track_url"),
	}, nil
}

// splitFrontmatter separates YAML front matter (between leading --- delimiters)
// from the Markdown body. If no front matter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML falls back to treating everything as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// PlainText reduces a Markdown body to plain text: code fences, images, and
// markup syntax are removed, link text is kept, and whitespace is collapsed
// to single spaces.
func PlainText(body string) string {
	s := codeFenceRe.ReplaceAllString(body, " ")
	s = imageRe.ReplaceAllString(s, " ")
	s = linkRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "$1")
	return strings.Join(strings.Fields(s), " ")
}

// fmString returns a string front matter value, or empty string.
func fmString(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if v, ok := fm[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// fmBool returns a boolean front matter value, or false.
func fmBool(fm map[string]interface{}, key string) bool {
	if fm == nil {
		return false
	}
	if v, ok := fm[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// fmTime returns a timestamp front matter value. Accepts RFC 3339, a space
// separated datetime, or a bare date; yaml.v3 also hands back parsed
// time.Time values directly for unquoted timestamps.
func fmTime(fm map[string]interface{}, key string) *time.Time {
	if fm == nil {
		return nil
	}
	v, ok := fm[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

// fmTags collects tags from the front matter "tags" field, which may be a
// YAML list or a single comma/space separated string.
func fmTags(fm map[string]interface{}) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm["tags"]
	if !ok {
		return nil
	}

	var out []string
	appendTag := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				appendTag(s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			appendTag(s)
		}
	}
	return out
}

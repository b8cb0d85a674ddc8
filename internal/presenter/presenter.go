// Package presenter derives the read-only display representations of an
// article: state-dependent paths, canonical URLs, description summaries,
// tag lists, title-length buckets, campaign query params, and the video
// metadata projection. All derivations are pure functions of the article
// snapshot and are safe to call concurrently on independent presenters.
package presenter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bylinehq/byline/internal/cdn"
	"github.com/bylinehq/byline/internal/models"
	"github.com/bylinehq/byline/internal/parser"
)

// DefaultPlacement is the utm_source used when no placement is given.
const DefaultPlacement = "additional_box"

// descriptionMax bounds the length of body-derived descriptions.
const descriptionMax = 120

// Comment thresholds by tag.
const (
	commentsDefault = 25
	commentsDiscuss = 75
)

// ParseFunc extracts the front matter description, tags, and plain body text
// from raw article Markdown. It is injected so tests and callers with an
// upstream parser can substitute their own.
type ParseFunc func(markdown string) (description string, tags []string, plainBody string)

// Presenter wraps an article snapshot together with the injected app domain,
// author display name, and CDN transformer.
type Presenter struct {
	article *models.Article
	domain  string
	author  string
	cdn     cdn.Transformer
	parse   ParseFunc
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithAuthorName overrides the author display name used in fallback
// descriptions. Defaults to the article username.
func WithAuthorName(name string) Option {
	return func(p *Presenter) { p.author = name }
}

// WithTransformer sets the CDN transformer for video thumbnails.
// Defaults to the identity transformer.
func WithTransformer(t cdn.Transformer) Option {
	return func(p *Presenter) { p.cdn = t }
}

// WithParseFunc overrides the front matter parser.
func WithParseFunc(fn ParseFunc) Option {
	return func(p *Presenter) { p.parse = fn }
}

// New creates a Presenter over the given article. domain is the public host
// name of the application, used for canonical URL fallbacks.
func New(a *models.Article, domain string, opts ...Option) *Presenter {
	p := &Presenter{
		article: a,
		domain:  domain,
		author:  a.Username,
		cdn:     cdn.Identity{},
		parse:   parseBody,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Article returns the wrapped article snapshot.
func (p *Presenter) Article() *models.Article { return p.article }

// parseBody is the default ParseFunc backed by the parser package.
func parseBody(markdown string) (string, []string, string) {
	res, err := parser.Parse([]byte(markdown))
	if err != nil {
		return "", nil, ""
	}
	return res.Description, res.Tags, res.PlainBody
}

// CurrentStatePath returns the article path for its publish state: the plain
// path when published, the preview-token path for drafts.
func (p *Presenter) CurrentStatePath() string {
	if p.article.Published {
		return fmt.Sprintf("/%s/%s", p.article.Username, p.article.Slug)
	}
	return fmt.Sprintf("/%s/%s?preview=%s", p.article.Username, p.article.Slug, p.article.Password)
}

// URL returns the app-hosted URL for the article, ignoring any custom
// canonical URL.
func (p *Presenter) URL() string {
	return "https://" + p.domain + p.article.Path
}

// ProcessedCanonicalURL returns the trimmed custom canonical URL when one is
// set, otherwise the app-hosted URL.
func (p *Presenter) ProcessedCanonicalURL() string {
	if u := strings.TrimSpace(p.article.CanonicalURL); u != "" {
		return u
	}
	return p.URL()
}

// DescriptionAndTags builds the article's summary sentence. Resolution order:
// the search-optimized replacement verbatim; the front matter description;
// a truncated plain-text body excerpt; "A post by {author}.". Front matter
// tags, when present, are appended as a "Tagged with ..." clause.
func (p *Presenter) DescriptionAndTags() string {
	if s := p.article.SearchOptimizedDescriptionReplacement; s != "" {
		return s
	}

	desc, tags, plain := p.parse(p.article.BodyMarkdown)

	base := strings.TrimSpace(desc)
	if base != "" {
		base = ensureSentence(base)
	} else {
		base = p.bodyDescription(plain)
	}

	if len(tags) > 0 {
		base += " Tagged with " + strings.Join(tags, ", ") + "."
	}
	return base
}

// bodyDescription derives a base sentence from the plain body text, falling
// back to an author attribution when the body is empty.
func (p *Presenter) bodyDescription(plain string) string {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return ensureSentence("A post by " + p.author)
	}
	if truncated := truncateAtWord(plain, descriptionMax); truncated != plain {
		return truncated
	}
	return ensureSentence(plain)
}

// CommentsToShowCount returns how many comments to render inline: 75 when the
// cached tags contain "discuss", 25 otherwise.
func (p *Presenter) CommentsToShowCount() int {
	for _, t := range p.CachedTagListArray() {
		if t == "discuss" {
			return commentsDiscuss
		}
	}
	return commentsDefault
}

// CachedTagListArray splits the cached tag list on commas, trimming entries
// and dropping empty ones. Empty input yields an empty slice.
func (p *Presenter) CachedTagListArray() []string {
	out := []string{}
	for _, t := range strings.Split(p.article.CachedTagList, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// TitleLength classifies a title by character count.
type TitleLength string

// Title length buckets, largest first.
const (
	TitleLongest TitleLength = "longest"
	TitleLonger  TitleLength = "longer"
	TitleLong    TitleLength = "long"
	TitleMedium  TitleLength = "medium"
	TitleShort   TitleLength = "short"
)

// TitleLengthClassification buckets the title by its character count.
func (p *Presenter) TitleLengthClassification() TitleLength {
	n := utf8.RuneCountInString(p.article.Title)
	switch {
	case n > 100:
		return TitleLongest
	case n > 80:
		return TitleLonger
	case n > 60:
		return TitleLong
	case n > 20:
		return TitleMedium
	default:
		return TitleShort
	}
}

// InternalUTMParams builds the campaign-tracking query string for internal
// placements. An empty placement defaults to DefaultPlacement. The campaign
// is "{org}_boosted" for boosted articles (empty org segment without an
// organization) and "regular" otherwise; booster_org carries the organization
// slug whenever one is present, regardless of the boosted flag.
func (p *Presenter) InternalUTMParams(placement string) string {
	if placement == "" {
		placement = DefaultPlacement
	}

	boosterOrg := ""
	if p.article.Organization != nil {
		boosterOrg = p.article.Organization.Slug
	}

	campaign := "regular"
	if p.article.BoostedAdditionalArticles {
		campaign = boosterOrg + "_boosted"
	}

	return fmt.Sprintf("?utm_source=%s&utm_medium=internal&utm_campaign=%s&booster_org=%s",
		placement, campaign, boosterOrg)
}

// VideoMetadata projects the article's video fields, substituting the
// CDN-transformed thumbnail URL for the raw one.
func (p *Presenter) VideoMetadata() models.VideoMetadata {
	return models.VideoMetadata{
		ID:                         p.article.ID,
		VideoCode:                  p.article.VideoCode,
		VideoSourceURL:             p.article.VideoSourceURL,
		VideoThumbnailURL:          p.cdn.Transform(p.article.VideoThumbnailURL),
		VideoClosedCaptionTrackURL: p.article.VideoClosedCaptionTrackURL,
	}
}

// PublishedAtInt converts the publication timestamp to Unix epoch seconds.
// It errors when the article has no publication timestamp.
func (p *Presenter) PublishedAtInt() (int64, error) {
	if p.article.PublishedAt == nil || p.article.PublishedAt.IsZero() {
		return 0, fmt.Errorf("presenter: article %q has no published_at", p.article.ID)
	}
	return p.article.PublishedAt.Unix(), nil
}

// ensureSentence appends a terminating period unless s already ends in
// sentence punctuation.
func ensureSentence(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

// truncateAtWord truncates s at a word boundary, appending "..." if it was
// cut. Strings that fit within maxLen are returned unchanged.
func truncateAtWord(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}

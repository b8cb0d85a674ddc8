// Package articleservice composes storage, parsing, indexing, and the
// presenter into the read model served by the API and MCP layers.
package articleservice

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/bylinehq/byline/internal/apperr"
	"github.com/bylinehq/byline/internal/cdn"
	"github.com/bylinehq/byline/internal/index"
	"github.com/bylinehq/byline/internal/models"
	"github.com/bylinehq/byline/internal/parser"
	"github.com/bylinehq/byline/internal/presenter"
	"github.com/bylinehq/byline/internal/store"
)

// ArticleDetail is the full representation of an article, raw fields plus
// the presenter's derived values.
type ArticleDetail struct {
	ID           string     `json:"id"`
	Path         string     `json:"path"`
	Title        string     `json:"title"`
	Username     string     `json:"username"`
	Slug         string     `json:"slug"`
	BodyMarkdown string     `json:"body_markdown"`
	Tags         []string   `json:"tags"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`

	CurrentStatePath          string                `json:"current_state_path"`
	URL                       string                `json:"url"`
	ProcessedCanonicalURL     string                `json:"processed_canonical_url"`
	Description               string                `json:"description"`
	CommentsToShowCount       int                   `json:"comments_to_show_count"`
	TitleLengthClassification string                `json:"title_length_classification"`
	VideoMetadata             *models.VideoMetadata `json:"video_metadata,omitempty"`
}

// ArticleListItem is a lightweight item in a list response.
type ArticleListItem struct {
	ID          string     `json:"id"`
	Path        string     `json:"path"`
	Title       string     `json:"title"`
	Username    string     `json:"username"`
	Slug        string     `json:"slug"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	URL         string     `json:"url"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Service coordinates store and index operations and presents articles.
type Service struct {
	store  store.Provider
	db     *index.DB
	domain string
	cdn    cdn.Transformer
}

// NewService creates a new article service. domain is the public host name
// used for canonical URLs; t transforms video thumbnail URLs.
func NewService(st store.Provider, db *index.DB, domain string, t cdn.Transformer) *Service {
	if t == nil {
		t = cdn.Identity{}
	}
	return &Service{store: st, db: db, domain: domain, cdn: t}
}

// GetArticle loads the article with the given username and slug and builds
// its full detail representation.
func (s *Service) GetArticle(_ context.Context, username, slug string) (*ArticleDetail, error) {
	row, err := s.db.GetBySlug(username, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	return s.buildDetail(row)
}

// GetByPath loads the article indexed at the given content path.
func (s *Service) GetByPath(_ context.Context, path string) (*ArticleDetail, error) {
	row, err := s.db.GetByPath(path)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	return s.buildDetail(row)
}

// Project serializes the selected raw fields and derived methods of an
// article into a name→value mapping.
func (s *Service) Project(_ context.Context, username, slug string, opts presenter.Options) (map[string]any, error) {
	row, err := s.db.GetBySlug(username, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	p, err := s.presenterFor(row)
	if err != nil {
		return nil, err
	}
	return presenter.Serialize(p, opts)
}

// ProjectList serializes a page of published articles with the same options
// applied pointwise to every item.
func (s *Service) ProjectList(_ context.Context, limit, offset int, tag string, opts presenter.Options) ([]map[string]any, error) {
	rows, _, err := s.db.ListArticles(limit, offset, tag, "published_at", true)
	if err != nil {
		return nil, err
	}
	ps := make([]*presenter.Presenter, 0, len(rows))
	for i := range rows {
		p, err := s.presenterFor(&rows[i])
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return presenter.SerializeAll(ps, opts)
}

// ListArticles returns paginated articles with optional tag filter.
func (s *Service) ListArticles(_ context.Context, limit, offset int, tag, sort string, publishedOnly bool) ([]ArticleListItem, int, error) {
	rows, total, err := s.db.ListArticles(limit, offset, tag, sort, publishedOnly)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ArticleListItem, len(rows))
	for i, r := range rows {
		items[i] = ArticleListItem{
			ID:          r.ID,
			Path:        r.Path,
			Title:       r.Title,
			Username:    r.Username,
			Slug:        r.Slug,
			Tags:        nonNilSlice(r.Tags),
			Published:   r.Published,
			PublishedAt: r.PublishedAt,
			URL:         "https://" + s.domain + "/" + r.Username + "/" + r.Slug,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// presenterFor reads the article source behind an index row and wraps it in
// a presenter.
func (s *Service) presenterFor(row *index.ArticleRow) (*presenter.Presenter, error) {
	data, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	article, err := buildArticle(row, data)
	if err != nil {
		return nil, err
	}
	return presenter.New(article, s.domain, presenter.WithTransformer(s.cdn)), nil
}

// buildDetail constructs an ArticleDetail from an index row and its source file.
func (s *Service) buildDetail(row *index.ArticleRow) (*ArticleDetail, error) {
	p, err := s.presenterFor(row)
	if err != nil {
		return nil, err
	}
	a := p.Article()

	detail := &ArticleDetail{
		ID:           a.ID,
		Path:         row.Path,
		Title:        a.Title,
		Username:     a.Username,
		Slug:         a.Slug,
		BodyMarkdown: a.BodyMarkdown,
		Tags:         nonNilSlice(p.CachedTagListArray()),
		Published:    a.Published,
		PublishedAt:  a.PublishedAt,

		CurrentStatePath:          p.CurrentStatePath(),
		URL:                       p.URL(),
		ProcessedCanonicalURL:     p.ProcessedCanonicalURL(),
		Description:               p.DescriptionAndTags(),
		CommentsToShowCount:       p.CommentsToShowCount(),
		TitleLengthClassification: string(p.TitleLengthClassification()),
	}
	if a.VideoSourceURL != "" || a.VideoCode != "" {
		vm := p.VideoMetadata()
		detail.VideoMetadata = &vm
	}
	return detail, nil
}

// buildArticle maps a parsed source file onto the domain snapshot. Index row
// values win for identity fields so path-derived username/slug stay
// consistent with lookups.
func buildArticle(row *index.ArticleRow, data []byte) (*models.Article, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	var org *models.Organization
	if res.Organization != "" {
		org = &models.Organization{Slug: res.Organization}
	}

	return &models.Article{
		ID:           row.ID,
		Title:        res.Title,
		BodyMarkdown: string(data),
		CanonicalURL: res.CanonicalURL,
		Slug:         row.Slug,
		Username:     row.Username,
		Published:    res.Published,
		Password:     res.Password,

		CachedTagList: strings.Join(res.Tags, ", "),

		BoostedAdditionalArticles: res.Boosted,
		Organization:              org,
		PublishedAt:               res.PublishedAt,

		SearchOptimizedDescriptionReplacement: res.SEODescription,

		VideoCode:                  res.VideoCode,
		VideoSourceURL:             res.VideoSourceURL,
		VideoThumbnailURL:          res.VideoThumbnailURL,
		VideoClosedCaptionTrackURL: res.VideoClosedCaptionTrackURL,

		Path: "/" + row.Username + "/" + row.Slug,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

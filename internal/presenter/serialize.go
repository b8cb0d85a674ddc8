package presenter

import "fmt"

// Options selects which raw fields and derived methods appear in a
// serialized projection.
type Options struct {
	Only    []string // raw field names; empty means no raw fields
	Methods []string // derived method names; empty means no derived values
}

// fieldGetters maps raw field names to their values.
var fieldGetters = map[string]func(*Presenter) any{
	"id":                          func(p *Presenter) any { return p.article.ID },
	"title":                       func(p *Presenter) any { return p.article.Title },
	"body_markdown":               func(p *Presenter) any { return p.article.BodyMarkdown },
	"canonical_url":               func(p *Presenter) any { return p.article.CanonicalURL },
	"slug":                        func(p *Presenter) any { return p.article.Slug },
	"username":                    func(p *Presenter) any { return p.article.Username },
	"published":                   func(p *Presenter) any { return p.article.Published },
	"cached_tag_list":             func(p *Presenter) any { return p.article.CachedTagList },
	"boosted_additional_articles": func(p *Presenter) any { return p.article.BoostedAdditionalArticles },
	"path":                        func(p *Presenter) any { return p.article.Path },
	"published_at":                func(p *Presenter) any { return p.article.PublishedAt },
	"video_code":                  func(p *Presenter) any { return p.article.VideoCode },
	"video_source_url":            func(p *Presenter) any { return p.article.VideoSourceURL },
	"video_thumbnail_url":         func(p *Presenter) any { return p.article.VideoThumbnailURL },
	"video_closed_caption_track_url": func(p *Presenter) any {
		return p.article.VideoClosedCaptionTrackURL
	},
}

// methodGetters maps derived method names to their computations. Methods with
// an error return propagate it; methods with arguments use their defaults.
var methodGetters = map[string]func(*Presenter) (any, error){
	"current_state_path":          ok(func(p *Presenter) any { return p.CurrentStatePath() }),
	"url":                         ok(func(p *Presenter) any { return p.URL() }),
	"processed_canonical_url":     ok(func(p *Presenter) any { return p.ProcessedCanonicalURL() }),
	"description_and_tags":        ok(func(p *Presenter) any { return p.DescriptionAndTags() }),
	"comments_to_show_count":      ok(func(p *Presenter) any { return p.CommentsToShowCount() }),
	"cached_tag_list_array":       ok(func(p *Presenter) any { return p.CachedTagListArray() }),
	"title_length_classification": ok(func(p *Presenter) any { return p.TitleLengthClassification() }),
	"internal_utm_params":         ok(func(p *Presenter) any { return p.InternalUTMParams("") }),
	"video_metadata":              ok(func(p *Presenter) any { return p.VideoMetadata() }),
	"published_at_int": func(p *Presenter) (any, error) {
		return p.PublishedAtInt()
	},
}

func ok(fn func(*Presenter) any) func(*Presenter) (any, error) {
	return func(p *Presenter) (any, error) { return fn(p), nil }
}

// Serialize maps the selected raw fields and derived methods to their values.
// Unknown names fail the whole call.
func Serialize(p *Presenter, opts Options) (map[string]any, error) {
	out := make(map[string]any, len(opts.Only)+len(opts.Methods))

	for _, name := range opts.Only {
		get, found := fieldGetters[name]
		if !found {
			return nil, fmt.Errorf("presenter: unknown field %q", name)
		}
		out[name] = get(p)
	}

	for _, name := range opts.Methods {
		get, found := methodGetters[name]
		if !found {
			return nil, fmt.Errorf("presenter: unknown method %q", name)
		}
		v, err := get(p)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}

	return out, nil
}

// SerializeAll applies Serialize pointwise over a slice of presenters,
// preserving order.
func SerializeAll(ps []*Presenter, opts Options) ([]map[string]any, error) {
	out := make([]map[string]any, len(ps))
	for i, p := range ps {
		m, err := Serialize(p, opts)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

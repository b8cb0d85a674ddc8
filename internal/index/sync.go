package index

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bylinehq/byline/internal/parser"
	"github.com/bylinehq/byline/internal/store"
)

// Sync walks the content directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, st store.Provider, logger *slog.Logger) error {
	metas, err := st.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := st.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteArticle(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	username, slug := identityFromPath(path)
	if res.Slug != "" {
		slug = res.Slug
	}

	id := res.ID
	if id == "" {
		// No authored ID: derive a stable one from the file path.
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
	}

	row := ArticleRow{
		Path:        path,
		ID:          id,
		Username:    username,
		Slug:        slug,
		Title:       res.Title,
		Checksum:    store.Sum(data),
		Tags:        res.Tags,
		Published:   res.Published,
		PublishedAt: res.PublishedAt,
		UpdatedAt:   time.Now(),
	}
	return db.UpsertArticle(row, res.PlainBody)
}

// identityFromPath derives the author username and article slug from the
// content layout convention {username}/{slug}.md. Files at the top level get
// an empty username.
func identityFromPath(path string) (username, slug string) {
	slug = strings.TrimSuffix(filepath.Base(path), ".md")
	if dir := filepath.Dir(path); dir != "." {
		// First path element is the username.
		username = strings.SplitN(filepath.ToSlash(dir), "/", 2)[0]
	}
	return username, slug
}

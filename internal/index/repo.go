package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ArticleRow represents a row in the articles table.
type ArticleRow struct {
	Path        string
	ID          string
	Username    string
	Slug        string
	Title       string
	Checksum    string
	Tags        []string
	Published   bool
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertArticle inserts or replaces an article and its FTS entry within a transaction.
func (db *DB) UpsertArticle(a ArticleRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(a.Tags)

	_, err = tx.Exec(`
		INSERT INTO articles (path, id, username, slug, title, checksum, tags, published, published_at, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id           = excluded.id,
			username     = excluded.username,
			slug         = excluded.slug,
			title        = excluded.title,
			checksum     = excluded.checksum,
			tags         = excluded.tags,
			published    = excluded.published,
			published_at = excluded.published_at,
			body         = excluded.body,
			updated_at   = excluded.updated_at
	`, a.Path, a.ID, a.Username, a.Slug, a.Title, a.Checksum, string(tagsJSON),
		a.Published, a.PublishedAt, body, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert article: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, a.Path, a.Title, body, a.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteArticle removes an article and its FTS entry.
func (db *DB) DeleteArticle(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM articles WHERE path = ?`, path)

	return tx.Commit()
}

const articleColumns = `path, id, username, slug, title, checksum, tags, published, published_at, updated_at`

func scanArticle(scan func(...any) error) (ArticleRow, error) {
	var a ArticleRow
	var tagsJSON string
	var publishedAt sql.NullTime
	err := scan(&a.Path, &a.ID, &a.Username, &a.Slug, &a.Title, &a.Checksum,
		&tagsJSON, &a.Published, &publishedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &a.Tags)
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	return a, nil
}

// GetBySlug returns the article with the given username and slug, or nil when
// none is indexed.
func (db *DB) GetBySlug(username, slug string) (*ArticleRow, error) {
	row := db.conn.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE username = ? AND slug = ?`,
		username, slug)
	a, err := scanArticle(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("index: get by slug: %w", err)
	}
	return &a, nil
}

// GetByPath returns the article indexed at path, or nil when none is indexed.
func (db *DB) GetByPath(path string) (*ArticleRow, error) {
	row := db.conn.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE path = ?`, path)
	a, err := scanArticle(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("index: get by path: %w", err)
	}
	return &a, nil
}

// ListArticles returns paginated articles with an optional tag filter and the
// total count before pagination. sort may be "published_at", "title", or
// "path"; anything else sorts by updated_at descending. Only published
// articles are listed when publishedOnly is true.
func (db *DB) ListArticles(limit, offset int, tag, sort string, publishedOnly bool) ([]ArticleRow, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var where []string
	var args []any
	if publishedOnly {
		where = append(where, "published = 1")
	}
	if tag != "" {
		// Tags are stored as a JSON string array; match the quoted element.
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM articles`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count articles: %w", err)
	}

	order := "updated_at DESC"
	switch sort {
	case "published_at":
		order = "published_at DESC"
	case "title":
		order = "title ASC"
	case "path":
		order = "path ASC"
	}

	rows, err := db.conn.Query(`SELECT `+articleColumns+` FROM articles`+clause+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list articles: %w", err)
	}
	defer rows.Close()

	var out []ArticleRow
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// GetChecksum returns the stored checksum for an article, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM articles WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum for every indexed path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// AllPaths returns every indexed article path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

package index

// ArticleIndex defines the interface for article indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ArticleIndex interface {
	UpsertArticle(a ArticleRow, body string) error
	DeleteArticle(path string) error
	GetBySlug(username, slug string) (*ArticleRow, error)
	GetByPath(path string) (*ArticleRow, error)
	ListArticles(limit, offset int, tag, sort string, publishedOnly bool) ([]ArticleRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	AllPaths() (map[string]struct{}, error)
	Close() error
}

// Verify *DB satisfies ArticleIndex at compile time.
var _ ArticleIndex = (*DB)(nil)

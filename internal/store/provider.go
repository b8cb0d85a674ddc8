// Package store defines the content-directory file abstraction for article sources.
package store

import "github.com/bylinehq/byline/internal/models"

// Provider is the interface for article file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to content root).
	List(dir string) ([]models.ArticleMetadata, error)
	// Read returns the raw bytes of the file at path (relative to content root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to content root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to content root).
	Delete(path string) error
}

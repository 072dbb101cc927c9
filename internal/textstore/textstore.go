// Package textstore caches extracted document text on disk, one file per
// document id.
package textstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound reports that no extracted text exists for a document id.
var ErrNotFound = errors.New("extracted text not found")

// Store reads and writes extracted text files under a single directory.
type Store struct {
	dir string
}

// NewStore creates the cache directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating text cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, "extract_"+docID+".txt")
}

// Save writes the extracted text for a document, replacing any previous
// content.
func (s *Store) Save(docID, text string) error {
	if err := os.WriteFile(s.path(docID), []byte(text), 0o644); err != nil {
		return fmt.Errorf("saving extracted text for %s: %w", docID, err)
	}
	return nil
}

// Load returns the extracted text for a document, or ErrNotFound if none
// was ever saved.
func (s *Store) Load(docID string) (string, error) {
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("document %s: %w", docID, ErrNotFound)
		}
		return "", fmt.Errorf("loading extracted text for %s: %w", docID, err)
	}
	return string(data), nil
}

// Package storage persists image assets under a static-serving root. Every
// asset gets a generated unique path, with original and processed variants
// stored as sibling files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StaticPrefix is the URL prefix under which stored assets are served.
const StaticPrefix = "/static/"

// AssetStore saves upload artifacts and hands back the public paths they are
// addressable under.
type AssetStore interface {
	// Save writes the original and processed variants of one upload and
	// returns their static URLs.
	Save(originalExt string, original, processed []byte) (originalURL, processedURL string, err error)
	// Remove deletes previously stored assets by their static URLs. Missing
	// files are not an error.
	Remove(urls ...string) error
}

// DiskStore is an AssetStore backed by a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store
// rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes both variants as sibling files sharing one generated ID.
func (s *DiskStore) Save(originalExt string, original, processed []byte) (string, string, error) {
	ext := strings.TrimPrefix(strings.ToLower(originalExt), ".")
	if ext == "" {
		ext = "jpg"
	}

	id := uuid.New().String()
	origName := fmt.Sprintf("%s_orig.%s", id, ext)
	procName := fmt.Sprintf("%s_proc.png", id)

	if err := os.WriteFile(filepath.Join(s.dir, origName), original, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save original asset: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, procName), processed, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save processed asset: %w", err)
	}

	return StaticPrefix + origName, StaticPrefix + procName, nil
}

// Remove deletes the files behind the given static URLs.
func (s *DiskStore) Remove(urls ...string) error {
	for _, u := range urls {
		name := strings.TrimPrefix(u, StaticPrefix)
		if name == "" || name == u {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove asset %s: %w", name, err)
		}
	}
	return nil
}

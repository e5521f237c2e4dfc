// Package localstore is the on-disk fallback for assets that could not
// be uploaded remotely. Files are served from a public base URL, so the
// store maps between filesystem paths and URL paths.
package localstore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const dirPerm = 0o755

// Store writes fallback copies of assets under a root directory and
// addresses them by URL under a base path.
type Store struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewStore creates a Store rooted at dir, serving under baseURL.
func NewStore(dir, baseURL string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Save writes content to subdir/name under the store root and returns
// the public URL of the saved file. The write is staged to a temporary
// name and renamed into place, so readers never observe a partial file.
func (s *Store) Save(subdir, name string, content io.Reader) (string, error) {
	destDir := filepath.Join(s.dir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return "", fmt.Errorf("localstore: creating %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, name)
	tmp := dest + ".tmp-" + uuid.NewString()

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("localstore: creating staging file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tmp)

		return "", fmt.Errorf("localstore: writing %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)

		return "", fmt.Errorf("localstore: closing %s: %w", name, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)

		return "", fmt.Errorf("localstore: placing %s: %w", name, err)
	}

	url := s.URL(subdir, name)

	s.logger.Info("saved local fallback",
		slog.String("path", dest),
		slog.String("url", url),
	)

	return url, nil
}

// URL returns the public URL for a stored file.
func (s *Store) URL(subdir, name string) string {
	return s.baseURL + "/" + path.Join(subdir, name)
}

// IsLocal reports whether a URL points into this store.
func (s *Store) IsLocal(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}

// Delete removes the file behind a store URL. Deleting a file that is
// already gone, or a URL outside the store, is a no-op.
func (s *Store) Delete(url string) error {
	p, ok := s.filePath(url)
	if !ok {
		return nil
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("localstore: deleting %s: %w", p, err)
	}

	return nil
}

// Exists reports whether the file behind a store URL is present.
func (s *Store) Exists(url string) bool {
	p, ok := s.filePath(url)
	if !ok {
		return false
	}

	_, err := os.Stat(p)

	return err == nil
}

// filePath maps a store URL back to its filesystem path. Rejects URLs
// outside the base path and any path escaping the store root.
func (s *Store) filePath(url string) (string, bool) {
	if !s.IsLocal(url) {
		return "", false
	}

	rel := strings.TrimPrefix(url, s.baseURL+"/")

	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	return filepath.Join(s.dir, filepath.FromSlash(clean)), true
}

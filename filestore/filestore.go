// Package filestore stores policy attachments in a local
// content-addressed directory and returns stable URLs for them.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Store writes attachments under a root directory, named by content hash
// so re-uploading the same file is idempotent.
type Store struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBaseURL sets the URL prefix for returned attachment URLs. Without
// one, file:// URLs are returned.
func WithBaseURL(base string) Option {
	return func(s *Store) { s.baseURL = base }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}
	s := &Store{root: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upload stores one file and returns its URL.
func (s *Store) Upload(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()

	hasher := sha256.New()
	tmp, err := os.CreateTemp(s.root, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp attachment: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(io.MultiWriter(hasher, tmp), src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copy attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp attachment: %w", err)
	}

	name := hex.EncodeToString(hasher.Sum(nil))[:32] + filepath.Ext(path)
	dest := filepath.Join(s.root, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}

	s.logger.Debug("Stored attachment", "source", path, "name", name)
	return s.url(name), nil
}

// UploadGlob stores every file matching a doublestar pattern such as
// "docs/**/*.pdf" and returns their URLs in match order.
func (s *Store) UploadGlob(pattern string) ([]string, error) {
	base, pat := doublestar.SplitPattern(pattern)
	matches, err := doublestar.Glob(os.DirFS(base), pat)
	if err != nil {
		return nil, fmt.Errorf("invalid attachment pattern %q: %w", pattern, err)
	}

	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		full := filepath.Join(base, m)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		url, err := s.Upload(full)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Store) url(name string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + name
	}
	return "file://" + filepath.Join(s.root, name)
}

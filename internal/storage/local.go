package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore saves files on the local filesystem. Used in development and
// on single-instance deployments without object storage.
type LocalStore struct {
	dir     string
	baseURL string // e.g. "/api/files"
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the file under dir/path and returns its metadata.
func (s *LocalStore) Save(_ context.Context, path string, file io.Reader, contentType string) (*FileInfo, error) {
	full := filepath.Join(s.dir, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	out, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &FileInfo{
		URL:      s.URL(path),
		FileName: filepath.Base(path),
		FileSize: size,
		FileType: contentType,
	}, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Clean("/"+path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// URL returns the serving path for a stored file.
func (s *LocalStore) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Dir returns the storage root, used by the file-serving handler.
func (s *LocalStore) Dir() string {
	return s.dir
}

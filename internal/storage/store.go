// Package storage persists uploaded files (tax calendar PDFs, client
// documents) behind a small interface so handlers never care whether the
// bytes land on local disk or in an S3 bucket.
package storage

import (
	"context"
	"io"
)

// FileInfo describes a stored file.
type FileInfo struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

// Store is the file storage abstraction.
type Store interface {
	// Save persists the file under path and returns its metadata.
	Save(ctx context.Context, path string, file io.Reader, contentType string) (*FileInfo, error)
	// Delete removes a stored file. Missing files are not an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for a stored path.
	URL(path string) string
}

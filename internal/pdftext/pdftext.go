// Package pdftext extracts plain text from uploaded PDF files so it can
// be stored alongside the upload record for later search.
package pdftext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Extract returns the plain text of a PDF document.
// Returns an error for non-PDF or malformed input; callers treat that as
// "no extractable text", not as an upload failure.
func Extract(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// ExtractBytes is a convenience wrapper over Extract for in-memory files.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

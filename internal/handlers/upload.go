package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/ctxkeys"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/database"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/pdftext"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/storage"
)

// Allowed file types and size limit for uploads.
const maxUploadSize = 10 << 20 // 10 MB

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// UploadHandler stores client documents and extracts text from PDFs.
type UploadHandler struct {
	db    database.Service
	store storage.Store
}

// NewUploadHandler creates an UploadHandler with the given storage backend.
func NewUploadHandler(db database.Service, store storage.Store) *UploadHandler {
	return &UploadHandler{db: db, store: store}
}

// Upload handles multipart file uploads.
// Accepts: POST with multipart/form-data containing a "file" field and an
// optional "client_id". PDFs additionally get their plain text extracted
// and stored with the upload record for later search.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Enforce size limit before reading body
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		JSONError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Missing 'file' field in form data.")
		return
	}
	defer file.Close()

	// The file is read fully into memory: it is both stored and, for
	// PDFs, parsed for text. The 10 MB cap keeps this bounded.
	data, err := io.ReadAll(file)
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Could not read file.")
		return
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if !allowedTypes[contentType] {
		JSONError(w, http.StatusBadRequest, fmt.Sprintf(
			"File type '%s' not allowed. Accepted: PDF, JPG, PNG.", contentType,
		))
		return
	}

	userID := ctxkeys.GetUserID(r.Context())
	clientID := r.FormValue("client_id")

	safeName := sanitizeFilename(header.Filename)
	storagePath := fmt.Sprintf("uploads/%d_%s", time.Now().Unix(), safeName)

	info, err := h.store.Save(r.Context(), storagePath, bytes.NewReader(data), contentType)
	if err != nil {
		log.Printf("Upload failed: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to save file.")
		return
	}

	// Extract PDF text; a malformed PDF is not an upload failure.
	var extractedText *string
	if contentType == "application/pdf" {
		if text, err := pdftext.ExtractBytes(data); err != nil {
			log.Printf("PDF text extraction failed for %s: %v", header.Filename, err)
		} else if text != "" {
			extractedText = &text
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	_, err = pool.Exec(ctx, `
		INSERT INTO uploads (client_id, user_id, file_name, file_url, file_type, extracted_text)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, nilIfEmptyStr(clientID), userID, header.Filename, info.URL, contentType, extractedText)
	if err != nil {
		log.Printf("Error recording upload: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to record upload.")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Archivo subido y procesado correctamente",
		"file_url": info.URL,
		"file":     info,
	})
}

// ServeFile serves uploaded files.
// For S3 storage, redirects to the public bucket URL.
// For local storage, serves from disk.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filePath == "" {
		JSONError(w, http.StatusBadRequest, "File path required.")
		return
	}

	// If the store returns an https:// URL (S3), redirect to it.
	if url := h.store.URL(filePath); strings.HasPrefix(url, "https://") {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	if local, ok := h.store.(*storage.LocalStore); ok {
		http.ServeFile(w, r, filepath.Join(local.Dir(), filepath.Clean("/"+filePath)))
		return
	}

	JSONError(w, http.StatusNotFound, "File not found.")
}

// sanitizeFilename removes path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

// nilIfEmptyStr returns nil for empty strings (for nullable DB columns)
func nilIfEmptyStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

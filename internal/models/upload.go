package models

// Upload records a file stored for a client, with any text extracted
// from it (PDFs only) for later search.
type Upload struct {
	ID            string  `json:"id"`
	ClientID      *string `json:"client_id"`
	UserID        string  `json:"user_id"`
	FileName      string  `json:"file_name"`
	FileURL       string  `json:"file_url"`
	FileType      string  `json:"file_type"`
	ExtractedText *string `json:"extracted_text,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

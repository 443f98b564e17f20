package model

import "time"

// Lifecycle states of a document.  A freshly created document is UPLOADED;
// the ingestion pipeline moves it through PROCESSING to PROCESSED or FAILED.
const (
	DocumentUploaded   = "UPLOADED"
	DocumentProcessing = "PROCESSING"
	DocumentProcessed  = "PROCESSED"
	DocumentFailed     = "FAILED"
)

// Document is a row in the `documents` table.  Metadata is free-form JSON
// supplied by the uploader.  Files holds the child rows from
// `document_files` when the document is loaded in full.
type Document struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Status       string         `json:"status"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UploadedByID string         `json:"uploadedById"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Files        []DocumentFile `json:"files,omitempty"`
}

// DocumentFile records one uploaded file belonging to a document.  The bytes
// live on disk under the configured upload directory; FileURL is the stored
// path.
type DocumentFile struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	FileSize   int64  `json:"fileSize"`
	MimeType   string `json:"mimeType"`
}

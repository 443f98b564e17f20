package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/document-manager/internal/model"
)

// DocumentRepo persists documents and their file records.  Metadata maps are
// stored as JSON text in the `metadata` column.
type DocumentRepo struct{ DB *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{DB: db} }

func marshalMeta(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalMeta(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil
	}
	return m
}

// Create inserts the document and any attached file rows.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = model.DocumentUploaded
	}
	now := time.Now().UTC().Truncate(time.Second)
	d.CreatedAt, d.UpdatedAt = now, now
	meta, err := marshalMeta(d.Metadata)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO documents (id,title,description,status,metadata,uploaded_by_id,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		d.ID, d.Title, nullStr(d.Description), d.Status, meta, d.UploadedByID, d.CreatedAt, d.UpdatedAt); err != nil {
		return err
	}
	for i := range d.Files {
		f := &d.Files[i]
		f.ID = uuid.NewString()
		f.DocumentID = d.ID
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO document_files (id,document_id,file_name,file_url,file_size,mime_type) VALUES (?,?,?,?,?,?)",
			f.ID, f.DocumentID, f.FileName, f.FileURL, f.FileSize, f.MimeType); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddFiles appends file rows to an existing document.
func (r *DocumentRepo) AddFiles(ctx context.Context, documentID string, files []model.DocumentFile) error {
	for i := range files {
		f := &files[i]
		f.ID = uuid.NewString()
		f.DocumentID = documentID
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO document_files (id,document_id,file_name,file_url,file_size,mime_type) VALUES (?,?,?,?,?,?)",
			f.ID, f.DocumentID, f.FileName, f.FileURL, f.FileSize, f.MimeType); err != nil {
			return err
		}
	}
	return nil
}

// Get loads a document with its files.
func (r *DocumentRepo) Get(ctx context.Context, id string) (model.Document, error) {
	var d model.Document
	var desc, meta sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,description,status,metadata,uploaded_by_id,created_at,updated_at FROM documents WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.Title, &desc, &d.Status, &meta, &d.UploadedByID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	d.Description = desc.String
	d.Metadata = unmarshalMeta(meta)

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,document_id,file_name,file_url,file_size,mime_type FROM document_files WHERE document_id=?", id)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	for rows.Next() {
		var f model.DocumentFile
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FileName, &f.FileURL, &f.FileSize, &f.MimeType); err != nil {
			return d, err
		}
		d.Files = append(d.Files, f)
	}
	return d, rows.Err()
}

// List returns all documents newest-first, without their file rows.
func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,description,status,metadata,uploaded_by_id,created_at,updated_at FROM documents ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Document
	for rows.Next() {
		var d model.Document
		var desc, meta sql.NullString
		if err := rows.Scan(&d.ID, &d.Title, &desc, &d.Status, &meta, &d.UploadedByID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Description = desc.String
		d.Metadata = unmarshalMeta(meta)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update saves the mutable document fields (title, description, status, metadata).
func (r *DocumentRepo) Update(ctx context.Context, d *model.Document) error {
	d.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	meta, err := marshalMeta(d.Metadata)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE documents SET title=?,description=?,status=?,metadata=?,updated_at=? WHERE id=?",
		d.Title, nullStr(d.Description), d.Status, meta, d.UpdatedAt, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the document; file rows cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM documents WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

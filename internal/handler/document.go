package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-manager/internal/config"
	"github.com/iliyamo/document-manager/internal/middleware"
	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/repository"
)

// DocumentHandler implements document CRUD.  Uploaded file bytes go to the
// configured upload directory; the database stores the metadata rows.
type DocumentHandler struct {
	Cfg  config.Config
	Docs DocumentStore
}

func NewDocumentHandler(cfg config.Config, docs DocumentStore) *DocumentHandler {
	return &DocumentHandler{Cfg: cfg, Docs: docs}
}

type documentReq struct {
	Title       string         `json:"title" form:"title"`
	Description string         `json:"description" form:"description"`
	Status      string         `json:"status" form:"status"`
	Metadata    map[string]any `json:"metadata"`
}

// updateDocumentReq uses pointer fields so a PATCH can tell an absent field
// from one explicitly set to empty (clearing the description, say).
type updateDocumentReq struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Metadata    map[string]any `json:"metadata"`
}

// bindDocumentReq accepts either a JSON body or a multipart form.  In the
// multipart case metadata arrives as a JSON-encoded form field and files
// come from the "files" field.
func bindDocumentReq(c echo.Context) (documentReq, []*multipart.FileHeader, error) {
	var req documentReq
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		err := c.Bind(&req)
		return req, nil, err
	}

	req.Title = c.FormValue("title")
	req.Description = c.FormValue("description")
	req.Status = c.FormValue("status")
	if meta := c.FormValue("metadata"); meta != "" {
		if err := json.Unmarshal([]byte(meta), &req.Metadata); err != nil {
			return req, nil, errors.New("metadata must be a JSON object")
		}
	}
	form, err := c.MultipartForm()
	if err != nil {
		// Plain form without files.
		return req, nil, nil
	}
	return req, form.File["files"], nil
}

// bindUpdateDocumentReq is the PATCH counterpart of bindDocumentReq.  In the
// form case a field counts as present only when the form actually carries it.
func bindUpdateDocumentReq(c echo.Context) (updateDocumentReq, []*multipart.FileHeader, error) {
	var req updateDocumentReq
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		err := c.Bind(&req)
		return req, nil, err
	}

	vals, err := c.FormParams()
	if err != nil {
		return req, nil, err
	}
	if v, ok := vals["title"]; ok && len(v) > 0 {
		req.Title = &v[0]
	}
	if v, ok := vals["description"]; ok && len(v) > 0 {
		req.Description = &v[0]
	}
	if v, ok := vals["status"]; ok && len(v) > 0 {
		req.Status = &v[0]
	}
	if meta := c.FormValue("metadata"); meta != "" {
		if err := json.Unmarshal([]byte(meta), &req.Metadata); err != nil {
			return req, nil, errors.New("metadata must be a JSON object")
		}
	}
	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, nil
	}
	return req, form.File["files"], nil
}

// saveUploads writes the multipart files to the upload directory and returns
// their file records.  Stored names are prefixed with a fresh uuid so two
// uploads of the same file name never collide.
func (h *DocumentHandler) saveUploads(files []*multipart.FileHeader) ([]model.DocumentFile, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	var out []model.DocumentFile
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		name := filepath.Base(fh.Filename)
		stored := filepath.Join(h.Cfg.UploadDir, uuid.NewString()+"_"+name)
		dst, err := os.Create(stored)
		if err != nil {
			src.Close()
			return nil, err
		}
		size, err := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, err
		}
		mime := fh.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		out = append(out, model.DocumentFile{
			FileName: name,
			FileURL:  stored,
			FileSize: size,
			MimeType: mime,
		})
	}
	return out, nil
}

// Create handles POST /document (ADMIN/EDITOR).
func (h *DocumentHandler) Create(c echo.Context) error {
	req, fileHeaders, err := bindDocumentReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	uploadedBy, _ := c.Get(middleware.CtxUserID).(string)

	files, err := h.saveUploads(fileHeaders)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store files failed"})
	}

	d := model.Document{
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Status:       model.DocumentUploaded,
		Metadata:     req.Metadata,
		UploadedByID: uploadedBy,
		Files:        files,
	}
	if err := h.Docs.Create(c.Request().Context(), &d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create document failed"})
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /document (all roles).
func (h *DocumentHandler) List(c echo.Context) error {
	docs, err := h.Docs.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return c.JSON(http.StatusOK, docs)
}

// Get handles GET /document/:id (all roles), including file records.
func (h *DocumentHandler) Get(c echo.Context) error {
	d, err := h.Docs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PATCH /document/:id (ADMIN/EDITOR).  Supplied fields are
// changed; additional uploaded files are appended to the document.
func (h *DocumentHandler) Update(c echo.Context) error {
	req, fileHeaders, err := bindUpdateDocumentReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	d, err := h.Docs.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		d.Title = t
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		switch status {
		case model.DocumentUploaded, model.DocumentProcessing, model.DocumentProcessed, model.DocumentFailed:
			d.Status = status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
	}
	if req.Metadata != nil {
		d.Metadata = req.Metadata
	}

	if err := h.Docs.Update(ctx, &d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if len(fileHeaders) > 0 {
		files, err := h.saveUploads(fileHeaders)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store files failed"})
		}
		if err := h.Docs.AddFiles(ctx, d.ID, files); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store files failed"})
		}
		d.Files = append(d.Files, files...)
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /document/:id (ADMIN/EDITOR).  File bytes on disk
// are removed best-effort after the row is gone.
func (h *DocumentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := h.Docs.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Docs.Delete(ctx, d.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	for _, f := range d.Files {
		_ = os.Remove(f.FileURL)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

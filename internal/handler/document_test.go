package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/document-manager/internal/middleware"
	"github.com/iliyamo/document-manager/internal/model"
)

func newDocApp(t *testing.T) (*echo.Echo, *fakeDocStore) {
	t.Helper()
	cfg := testConfig()
	cfg.UploadDir = t.TempDir()
	docs := newFakeDocStore()
	h := NewDocumentHandler(cfg, docs)
	e := echo.New()
	// Simulate the guard having run: inject the uploader identity.
	asEditor := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, "editor-1")
			c.Set(middleware.CtxRole, model.RoleEditor)
			return next(c)
		}
	}
	e.POST("/document", h.Create, asEditor)
	e.GET("/document", h.List)
	e.GET("/document/:id", h.Get)
	e.PATCH("/document/:id", h.Update)
	e.DELETE("/document/:id", h.Delete)
	return e, docs
}

func TestDocumentCreateJSON(t *testing.T) {
	e, _ := newDocApp(t)

	rec := doJSON(e, http.MethodPost, "/document",
		`{"title":"Q3 Report","description":"quarterly numbers","metadata":{"team":"finance"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var d model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Q3 Report", d.Title)
	assert.Equal(t, model.DocumentUploaded, d.Status)
	assert.Equal(t, "editor-1", d.UploadedByID)
	assert.Equal(t, "finance", d.Metadata["team"])
}

func TestDocumentCreateRequiresTitle(t *testing.T) {
	e, _ := newDocApp(t)
	rec := doJSON(e, http.MethodPost, "/document", `{"description":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentCreateMultipartStoresFiles(t *testing.T) {
	e, _ := newDocApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "with attachment"))
	fw, err := mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello ingestion"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/document", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var d model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Len(t, d.Files, 1)
	assert.Equal(t, "notes.txt", d.Files[0].FileName)
	assert.Equal(t, int64(len("hello ingestion")), d.Files[0].FileSize)

	// Bytes really landed on disk under the upload dir.
	data, err := os.ReadFile(d.Files[0].FileURL)
	require.NoError(t, err)
	assert.Equal(t, "hello ingestion", string(data))
	assert.Equal(t, "notes.txt", filepath.Base(d.Files[0].FileURL)[37:]) // uuid_ prefix
}

func TestDocumentGetAndList(t *testing.T) {
	e, _ := newDocApp(t)
	created := doJSON(e, http.MethodPost, "/document", `{"title":"one"}`)
	var d model.Document
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &d))

	rec := doJSON(e, http.MethodGet, "/document/"+d.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/document", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doJSON(e, http.MethodGet, "/document/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentUpdate(t *testing.T) {
	e, _ := newDocApp(t)
	created := doJSON(e, http.MethodPost, "/document", `{"title":"draft"}`)
	var d model.Document
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &d))

	rec := doJSON(e, http.MethodPatch, "/document/"+d.ID, `{"title":"final","status":"PROCESSED"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, model.DocumentProcessed, updated.Status)

	rec = doJSON(e, http.MethodPatch, "/document/"+d.ID, `{"status":"NONSENSE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUpdatePartialFields(t *testing.T) {
	e, _ := newDocApp(t)
	created := doJSON(e, http.MethodPost, "/document", `{"title":"draft","description":"wip notes"}`)
	var d model.Document
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &d))

	// An explicit empty description clears it; the absent title is untouched.
	rec := doJSON(e, http.MethodPatch, "/document/"+d.ID, `{"description":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "draft", updated.Title)
	assert.Empty(t, updated.Description)

	// The title itself can never be blanked out.
	rec = doJSON(e, http.MethodPatch, "/document/"+d.ID, `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentDelete(t *testing.T) {
	e, _ := newDocApp(t)
	created := doJSON(e, http.MethodPost, "/document", `{"title":"doomed"}`)
	var d model.Document
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &d))

	rec := doJSON(e, http.MethodDelete, "/document/"+d.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/document/"+d.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

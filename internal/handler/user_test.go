package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserApp(t *testing.T) (*echo.Echo, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	h := NewUserHandler(testConfig(), users)
	e := echo.New()
	e.POST("/user", h.Create)
	e.GET("/user", h.List)
	e.GET("/user/:id", h.Get)
	e.PATCH("/user/:id", h.Update)
	e.DELETE("/user/:id", h.Delete)
	return e, users
}

func TestUserCreateDefaults(t *testing.T) {
	e, _ := newUserApp(t)

	rec := doJSON(e, http.MethodPost, "/user",
		`{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			IsActive bool   `json:"isActive"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "e@x.com", resp.Data.Email)
	assert.Equal(t, "VIEWER", resp.Data.Role)
	assert.True(t, resp.Data.IsActive)
}

func TestUserCreateNeverSerializesPasswordHash(t *testing.T) {
	e, _ := newUserApp(t)
	rec := doJSON(e, http.MethodPost, "/user",
		`{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456","role":"EDITOR"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pw123456")
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	e, _ := newUserApp(t)
	body := `{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456"}`
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/user", body).Code)

	rec := doJSON(e, http.MethodPost, "/user", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	e, _ := newUserApp(t)
	rec := doJSON(e, http.MethodPost, "/user",
		`{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456","role":"SUPERUSER"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserListReturnsTotal(t *testing.T) {
	e, _ := newUserApp(t)
	doJSON(e, http.MethodPost, "/user", `{"email":"a@x.com","firstName":"A","lastName":"A","password":"pw123456"}`)
	doJSON(e, http.MethodPost, "/user", `{"email":"b@x.com","firstName":"B","lastName":"B","password":"pw123456"}`)

	rec := doJSON(e, http.MethodGet, "/user", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Data, 2)
}

func TestUserGetNotFound(t *testing.T) {
	e, _ := newUserApp(t)
	rec := doJSON(e, http.MethodGet, "/user/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserUpdatePartial(t *testing.T) {
	e, _ := newUserApp(t)
	created := doJSON(e, http.MethodPost, "/user",
		`{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456"}`)
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))

	rec := doJSON(e, http.MethodPatch, "/user/"+resp.Data.ID, `{"role":"EDITOR","isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Data struct {
			Email    string `json:"email"`
			Role     string `json:"role"`
			IsActive bool   `json:"isActive"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "e@x.com", updated.Data.Email) // untouched
	assert.Equal(t, "EDITOR", updated.Data.Role)
	assert.False(t, updated.Data.IsActive)
}

func TestUserUpdateEmailConflict(t *testing.T) {
	e, _ := newUserApp(t)
	doJSON(e, http.MethodPost, "/user", `{"email":"a@x.com","firstName":"A","lastName":"A","password":"pw123456"}`)
	created := doJSON(e, http.MethodPost, "/user", `{"email":"b@x.com","firstName":"B","lastName":"B","password":"pw123456"}`)
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))

	rec := doJSON(e, http.MethodPatch, "/user/"+resp.Data.ID, `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserDelete(t *testing.T) {
	e, _ := newUserApp(t)
	created := doJSON(e, http.MethodPost, "/user",
		`{"email":"e@x.com","firstName":"Ed","lastName":"Itor","password":"pw123456"}`)
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))

	rec := doJSON(e, http.MethodDelete, "/user/"+resp.Data.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)

	rec = doJSON(e, http.MethodDelete, "/user/"+resp.Data.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-manager/internal/config"
	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/repository"
	"github.com/iliyamo/document-manager/internal/utils"
)

// UserHandler implements the admin-only user management endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewUserHandler(cfg config.Config, users UserStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users}
}

type createUserReq struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"isActive"`
}

type updateUserReq struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

// Create handles POST /user. Role defaults to VIEWER and isActive to true
// when omitted, matching signup defaults; the password is hashed with the
// same configured cost as every other create path.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "firstName/lastName required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleViewer
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u := model.User{
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User created successfully",
		"data":    u,
	})
}

// List handles GET /user, newest-first with a total count.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Users retrieved successfully",
		"data":    users,
		"total":   len(users),
	})
}

// Get handles GET /user/:id.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User retrieved successfully",
		"data":    u,
	})
}

// Update handles PATCH /user/:id. Only supplied fields change; an email
// change is re-checked against the unique constraint.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
		}
		if email != u.Email {
			if _, err := h.Users.GetByEmail(ctx, email); err == nil {
				return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
			} else if !errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			u.Email = email
		}
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if !model.ValidRole(role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		u.Role = role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User updated successfully",
		"data":    u,
	})
}

// Delete handles DELETE /user/:id (hard delete).
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User deleted successfully",
		"data":    echo.Map{"id": id, "deleted": true},
	})
}

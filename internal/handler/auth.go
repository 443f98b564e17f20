package handler

import (
	"context"              // provides context with cancellation for DB calls
	"errors"               // sentinel comparisons against repository errors
	"net/http"             // HTTP status codes and primitives
	"strings"              // string manipulation utilities
	"time"                 // cookie lifetimes and DB call timeouts

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/document-manager/internal/config"     // app configuration
	"github.com/iliyamo/document-manager/internal/middleware" // cookie names shared with the guard
	"github.com/iliyamo/document-manager/internal/model"      // domain types
	"github.com/iliyamo/document-manager/internal/repository" // sentinel errors
	"github.com/iliyamo/document-manager/internal/utils"      // helper functions (hashing, token issuing)
)

// RefreshCookie is the cookie carrying the long-lived refresh token.  The
// access token travels in middleware.AccessCookie.
const RefreshCookie = "refresh_token"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type signupReq struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}
type identityResp struct {
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AuthHandler) accessTTL() time.Duration {
	return time.Duration(h.Cfg.AccessTTLMin) * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	return time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
}

// issuePair signs an access+refresh token pair for the user.
func (h *AuthHandler) issuePair(u model.User) (access, refresh string, err error) {
	claims := utils.TokenClaims{
		Subject:   u.ID,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if access, err = utils.IssueToken(h.Cfg.JWTSecret, claims, h.accessTTL()); err != nil {
		return "", "", err
	}
	if refresh, err = utils.IssueToken(h.Cfg.JWTSecret, claims, h.refreshTTL()); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// setAuthCookies places the token pair in httpOnly cookies.  MaxAge matches
// each token's TTL; Secure is dropped only in the dev environment so local
// plain-HTTP frontends keep working.
func (h *AuthHandler) setAuthCookies(c echo.Context, access, refresh string) {
	secure := h.Cfg.Env != "dev"
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(h.accessTTL() / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(h.refreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Login handles POST /auth/login: verify credentials, set the cookie pair.
// An unknown email and a wrong password produce the same response so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.setAuthCookies(c, access, refresh)
	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful"})
}

// Signup handles POST /auth/signup: create a VIEWER account.  The email must
// be unused by any account, active or not.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "firstName/lastName required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email already in use"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u := model.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         model.RoleViewer,
		IsActive:     true,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Signup successful"})
}

// Refresh handles GET /auth/refresh: rotate the token pair.  The old refresh
// token is not invalidated server-side; tokens are stateless and expiry is
// the only invalidation mechanism.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Reload the subject so a deactivated or deleted account cannot keep
	// refreshing, and so role changes take effect on rotation.
	u, err := h.Users.GetActiveByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.setAuthCookies(c, access, refresh)
	return c.JSON(http.StatusOK, echo.Map{"message": "New token generated successfully"})
}

// Me handles GET /auth/me.  The route is unguarded: a missing or invalid
// access token yields a null body rather than an error so anonymous clients
// can render a logged-out view without special-casing a 401.
func (h *AuthHandler) Me(c echo.Context) error {
	cookie, err := c.Cookie(middleware.AccessCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, nil)
	}
	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, identityResp{
		Role:      claims.Role,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	})
}

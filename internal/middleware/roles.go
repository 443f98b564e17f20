package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/document-manager/internal/utils"
)

// Context keys under which the guard stores the verified identity.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxFirstName = "first_name"
	CtxLastName  = "last_name"
)

// AccessCookie is the cookie the guard reads the access token from.
const AccessCookie = "access_token"

// RequireRoles returns a middleware that enforces the route's declared role
// set.  Routes declare their allowed roles explicitly at registration time;
// there is no annotation scanning.  The rules are:
//
//   - no roles declared        -> allow unconditionally, even without a token
//   - access_token cookie gone -> 401 (not authenticated)
//   - token invalid or expired -> 401
//   - role not in the set      -> 403
//
// On success the subject id, role and name claims are stored in the Echo
// context for handlers to consume.
func RequireRoles(secret string, roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant‑time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
			cookie, err := c.Cookie(AccessCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			claims, err := utils.VerifyToken(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			if !allowed[claims.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxFirstName, claims.FirstName)
			c.Set(CtxLastName, claims.LastName)
			return next(c)
		}
	}
}

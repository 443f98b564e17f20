package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/document-manager/internal/config"
	"github.com/iliyamo/document-manager/internal/handler"
	"github.com/iliyamo/document-manager/internal/middleware"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Documents *handler.DocumentHandler
	Ingestion *handler.IngestionHandler
}

// Register declares every route together with its allowed-role set.  Role
// requirements are stated here at startup, per route; the guard has no
// other source of truth.  Routes registered without a guard (or with an
// empty role set) are public.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	secret := cfg.JWTSecret
	admin := middleware.RequireRoles(secret, "ADMIN")
	editors := middleware.RequireRoles(secret, "ADMIN", "EDITOR")
	readers := middleware.RequireRoles(secret, "ADMIN", "EDITOR", "VIEWER")

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Auth endpoints.  Login and signup are rate limited per client IP;
	// /auth/me deliberately carries no guard so anonymous requests get a
	// null identity instead of a 401.
	auth := e.Group("/auth", middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	auth.POST("/login", h.Auth.Login)
	auth.POST("/signup", h.Auth.Signup)
	auth.GET("/refresh", h.Auth.Refresh)
	auth.GET("/me", h.Auth.Me)

	// Read responses worth caching briefly: listings and single reads.
	cache := middleware.CacheReads(config.LoadCacheConfig(), rdb)

	// Document CRUD: every role reads, ADMIN and EDITOR write.
	e.POST("/document", h.Documents.Create, editors)
	e.GET("/document", h.Documents.List, readers, cache)
	e.GET("/document/:id", h.Documents.Get, readers, cache)
	e.PATCH("/document/:id", h.Documents.Update, editors)
	e.DELETE("/document/:id", h.Documents.Delete, editors)

	// User management is ADMIN only.
	e.POST("/user", h.Users.Create, admin)
	e.GET("/user", h.Users.List, admin)
	e.GET("/user/:id", h.Users.Get, admin)
	e.PATCH("/user/:id", h.Users.Update, admin)
	e.DELETE("/user/:id", h.Users.Delete, admin)

	// Ingestion: triggering requires write access, reads are open to every
	// role, and the PATCH webhook is called by the external worker which
	// holds no cookie, so it stays unguarded.
	e.POST("/ingestion/trigger", h.Ingestion.Trigger, editors)
	e.GET("/ingestion", h.Ingestion.List, readers, cache)
	e.GET("/ingestion/:id", h.Ingestion.Get, readers, cache)
	e.PATCH("/ingestion/:id", h.Ingestion.Update)
}

package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/document-manager/internal/config"
	"github.com/iliyamo/document-manager/internal/database"
	"github.com/iliyamo/document-manager/internal/handler"
	"github.com/iliyamo/document-manager/internal/queue"
	"github.com/iliyamo/document-manager/internal/repository"
	"github.com/iliyamo/document-manager/internal/router"
	"github.com/iliyamo/document-manager/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	users := repository.NewUserRepo(db)
	docs := repository.NewDocumentRepo(db)
	jobs := repository.NewIngestionRepo(db)

	// Seed the default ADMIN account on an empty database.
	if err := service.EnsureAdmin(ctx, users, cfg); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	dispatcher := service.NewDispatcher(jobs, cfg.IngestionURL)
	// Consume queued dispatch orders in the background; the consumer keeps
	// reconnecting on its own if the broker goes away.
	go queue.StartDispatchConsumer(dispatcher.Dispatch)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	rdb := config.NewRedisClient() // nil disables rate limiting and caching

	router.Register(e, cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Users:     handler.NewUserHandler(cfg, users),
		Documents: handler.NewDocumentHandler(cfg, docs),
		Ingestion: handler.NewIngestionHandler(jobs, dispatcher),
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

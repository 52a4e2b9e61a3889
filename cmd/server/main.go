package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nutritrack/nutritrack-server/internal/config"
	"github.com/nutritrack/nutritrack-server/internal/database"
	"github.com/nutritrack/nutritrack-server/internal/handler"
	"github.com/nutritrack/nutritrack-server/internal/middleware"
	"github.com/nutritrack/nutritrack-server/internal/queue"
	"github.com/nutritrack/nutritrack-server/internal/repository"
	"github.com/nutritrack/nutritrack-server/internal/router"
	"github.com/nutritrack/nutritrack-server/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database schema: %v", err)
	}
	cancel()

	store := storage.NewLocalStore(cfg.UploadsDir, cfg.MaxUploadBytes)

	users := repository.NewUserRepo(db)
	foodItems := repository.NewFoodItemRepo(db)
	photos := repository.NewPhotoRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	foodHandler := handler.NewFoodHandler(foodItems, cfg.EventsEnabled)
	photoHandler := handler.NewPhotoHandler(photos, store, cfg.EventsEnabled)

	e := echo.New()
	e.HideBanner = true

	// Rate limiting is distributed via Redis; when Redis is unreachable
	// the middleware is a no-op and the API stays up.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, authHandler, foodHandler, photoHandler, cfg.JWTSecret)

	if cfg.EventsEnabled {
		go func() {
			if err := queue.StartActivityConsumer(); err != nil {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, drain in-flight ones,
	// then let the deferred db.Close release the pool.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

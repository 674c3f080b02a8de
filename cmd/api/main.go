// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	middleware.SetupLogger(cfg)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunAutoMigrations(db.GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	if err := postgres.CreateIndexes(db.GetDB()); err != nil {
		log.Printf("⚠️  Failed to create indexes: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := postgres.SeedInitialData(db.GetDB()); err != nil {
			log.Printf("⚠️  Failed to seed initial data: %v", err)
		}
	}

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	server := httpserver.NewServer(cfg, db.GetDB(), redisClient)

	go func() {
		log.Printf("🚀 %s listening on port %s", cfg.App.Name, cfg.Server.Port)
		if err := server.Start(context.Background()); err != nil {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Forced shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

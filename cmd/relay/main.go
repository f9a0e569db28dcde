package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/pixelbridge-systems/pixelbridge/internal/capi"
	"github.com/pixelbridge-systems/pixelbridge/internal/config"
	"github.com/pixelbridge-systems/pixelbridge/internal/handlers"
	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/repository"
	"github.com/pixelbridge-systems/pixelbridge/internal/server"
	"github.com/pixelbridge-systems/pixelbridge/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	repo, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize client store: %v", err)
	}
	defer repo.Close()

	sender := capi.NewClient(cfg.Facebook.BaseURL, cfg.Facebook.APIVersion, cfg.Facebook.Timeout)
	relay := service.NewRelayService(repo, sender, logger)

	webhookHandler := handlers.NewWebhookHandler(relay, cfg.Webhook.Secret, logger)
	adminHandler := handlers.NewAdminHandler(repo, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash, logger)

	router := server.NewRouter(webhookHandler, adminHandler, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("pixelbridge relay listening on %s (store=%s)", srv.Addr, cfg.Store.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func buildRepository(cfg *config.Config) (repository.Repository, error) {
	var repo repository.Repository

	switch cfg.Store.Type {
	case "memory":
		repo = repository.NewInMemoryRepository()
	case "postgres":
		connString := cfg.Store.Postgres.ConnString()

		log.Println("Running database migrations...")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize migrations: %w", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Database migrations completed")

		repo, err = repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	case "remote":
		repo = repository.NewRemoteRepository(cfg.Store.Remote.URL, cfg.Store.Remote.APIKey, cfg.Store.Remote.Timeout)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}

	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		repo = repository.NewCachedRepository(repo, redisClient, cfg.Cache.TTL)
	}

	return repo, nil
}

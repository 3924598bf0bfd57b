// Package main initializes and starts the wish-list HTTP server, setting up
// configuration, logging, the database connection, repositories, services,
// handlers, and the change-notification hub.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/wishkeep/wishkeep/internal/config"
	"github.com/wishkeep/wishkeep/internal/db"
	"github.com/wishkeep/wishkeep/internal/logger"
	"github.com/wishkeep/wishkeep/internal/repository"
	"github.com/wishkeep/wishkeep/internal/server/handler/http"
	"github.com/wishkeep/wishkeep/internal/service"
	"github.com/wishkeep/wishkeep/internal/watch"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// tokenTTL bounds session token lifetime; a re-login is cheap.
const tokenTTL = 24 * time.Hour

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	buildVersion := version
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	buildTime := buildDate
	if buildTime == "" {
		buildTime = "N/A"
	}
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildTime)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.TokenSecret == "" {
		zapLogger.Fatal("token secret is required (-s or TOKEN_SECRET)")
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Periodically strip claim entries left behind by interrupted cascades.
	db.StartStaleClaimCleaner(context.Background(), postgresDB, time.Hour, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	itemRepo := repository.NewPostgresItemRepository(postgresDB)
	eventRepo := repository.NewPostgresEventRepository(postgresDB)

	// The hub fans collection changes out to watch subscribers.
	hub := watch.NewHub()

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, itemRepo, hub)
	itemService := service.NewItemService(itemRepo, hub)
	eventService := service.NewEventService(eventRepo, userRepo, itemRepo, hub)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, TokenSecret: options.TokenSecret, TokenTTL: tokenTTL}
	userHandler := &http.UserHandler{UserService: userService, TokenSecret: options.TokenSecret, TokenTTL: tokenTTL}
	itemHandler := &http.ItemHandler{ItemService: itemService}
	eventHandler := &http.EventHandler{EventService: eventService}
	watchHandler := &http.WatchHandler{Feed: hub, Users: userService, Items: itemService, Event: eventService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, userHandler, itemHandler, eventHandler, watchHandler, options.TokenSecret, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

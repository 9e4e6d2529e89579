package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"qms-document-control/internal/audit"
	"qms-document-control/internal/config"
	"qms-document-control/internal/db"
	"qms-document-control/internal/domain"
	"qms-document-control/internal/lifecycle"
	"qms-document-control/internal/middleware"
	"qms-document-control/internal/qms"
	"qms-document-control/internal/registry"
	"qms-document-control/internal/sheets"
	"qms-document-control/internal/store"
	"qms-document-control/internal/user"
	"qms-document-control/internal/worker"
	"qms-document-control/redis"
)

func main() {
	// Load configuration
	config.LoadConfig()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if config.AppConfig.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	zlog.Logger = logger

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis cache
	cache := redis.NewCache(config.AppConfig.RedisAddress)
	defer cache.Close()

	// Load the snapshot from the remote sheet store
	sheetsClient := sheets.NewClient(config.AppConfig.SheetsAddress, config.AppConfig.SheetsAPIKey)
	snapshot := loadSnapshot(sheetsClient, logger)

	st := store.New(snapshot)
	pool := worker.NewWorkerPool(4)
	defer pool.Shutdown()
	persister := store.NewPersister(sheetsClient, pool, logger)
	auditLogger := audit.NewLogger(db.AppDb)
	clock := lifecycle.SystemClock{}

	// Initialize services
	userRepo := user.NewRepository(db.AppDb)
	userService := user.NewService(userRepo)
	qmsService := qms.NewService(st, persister, auditLogger, clock, cache, logger)
	registryService := registry.NewService(st, persister, auditLogger, cache, logger)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	qmsHandler := qms.NewHandler(qmsService)
	registryHandler := registry.NewHandler(registryService)
	auditHandler := audit.NewHandler(auditLogger)

	// Catch up on date-crossing events (expiries, due reviews) at load and
	// once a day afterwards.
	if changed, err := qmsService.RefreshStatuses(context.Background()); err != nil {
		logger.Error().Err(err).Msg("initial status refresh failed")
	} else if changed > 0 {
		logger.Info().Int("changed", changed).Msg("statuses refreshed at startup")
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			if _, err := qmsService.RefreshStatuses(context.Background()); err != nil {
				logger.Error().Err(err).Msg("scheduled status refresh failed")
			}
		}
	}()

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	authMw := middleware.Auth{UserService: userService}
	authed := router.Group("/", authMw.AuthMiddleWare())
	editors := middleware.RequireRole(domain.RoleReviewer, domain.RoleApprover)
	admins := middleware.RequireRole()

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.POST("/refresh-token", userHandler.RefreshToken)
	authed.DELETE("/logout", userHandler.Logout)
	authed.GET("/profile", userHandler.GetProfile)
	authed.GET("/users", userHandler.SearchUsers)

	// Snapshot + lifecycle routes
	authed.GET("/state", qmsHandler.GetState)
	authed.GET("/notifications", qmsHandler.Notifications)
	authed.POST("/documents", editors, qmsHandler.SaveDocument)
	authed.DELETE("/documents/:code", editors, qmsHandler.DeleteDocument)
	authed.POST("/documents/:code/versions", editors, qmsHandler.SaveVersion)
	authed.DELETE("/versions/:id", editors, qmsHandler.DeleteVersion)
	authed.POST("/reviews", editors, qmsHandler.SaveReview)
	authed.POST("/frequencies", admins, qmsHandler.SaveFrequency)
	authed.DELETE("/frequencies/:id", admins, qmsHandler.DeleteFrequency)
	authed.POST("/refresh-statuses", admins, qmsHandler.RefreshStatuses)

	// Registers
	authed.POST("/distributions", editors, registryHandler.SaveDistribution)
	authed.DELETE("/distributions/:id", editors, registryHandler.DeleteDistribution)
	authed.POST("/internal-audits", editors, registryHandler.SaveInternalAudit)
	authed.DELETE("/internal-audits/:id", editors, registryHandler.DeleteInternalAudit)
	authed.POST("/risks", editors, registryHandler.SaveRisk)
	authed.DELETE("/risks/:id", editors, registryHandler.DeleteRisk)

	// Audit trail
	authed.GET("/audit-log", admins, auditHandler.List)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		logger.Info().Str("port", serverPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	<-ctx.Done()
	logger.Info().Msg("server shutdown complete")
}

// loadSnapshot fetches the persisted state, or starts a fresh snapshot with
// the default review frequencies when none has been stored yet. A transport
// failure is fatal: starting empty would overwrite the remote state on the
// next persist.
func loadSnapshot(client *sheets.Client, logger zerolog.Logger) *domain.Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := client.Fetch(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load snapshot from sheet store")
	}
	if snapshot == nil {
		logger.Info().Msg("no remote snapshot found, starting fresh")
		snapshot = domain.NewSnapshot()
		snapshot.ReviewFrequencies = []domain.ReviewFrequency{
			{ID: "freq-6", Name: "Semiannual", MonthCount: 6},
			{ID: "freq-12", Name: "Annual", MonthCount: 12},
			{ID: "freq-24", Name: "Biennial", MonthCount: 24},
		}
	}
	return snapshot
}

// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"freelance-auth-api/config"
	"freelance-auth-api/db"
	"freelance-auth-api/handler"
	"freelance-auth-api/logger"
	"freelance-auth-api/repository"
	"freelance-auth-api/router"
	"freelance-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	runMigrations()

	// Redis is only used for login throttling; if it is unreachable the
	// service still comes up, just without the limiter.
	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, login throttling disabled")
		redisClient = nil
	}

	r := buildRouter(database, redisClient)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires all layers together. This is the single place where
// repositories, services and handlers are constructed and injected.
func buildRouter(database *sql.DB, redisClient *redis.Client) http.Handler {
	cfg := config.AppConfig

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository()
	resetRepo := repository.NewResetRepository()

	// The signing secret is handed to the codec explicitly; nothing below
	// the config layer reads it from the environment.
	codec := service.NewTokenCodec(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL)
	refreshTokens := service.NewRefreshTokenService(database, tokenRepo, cfg.RefreshToken.TTL)

	var limiter *service.LoginLimiter
	if redisClient != nil {
		limiter = service.NewLoginLimiter(redisClient, cfg.LoginLimiter.MaxAttempts, cfg.LoginLimiter.Window)
	}

	authService := service.NewAuthService(userRepo, refreshTokens, codec, limiter)
	resetService := service.NewPasswordResetService(database, resetRepo, userRepo, service.LogMailer{}, cfg.PasswordReset.TokenTTL)

	userHandler := handler.NewUserHandler(authService)
	authHandler := handler.NewAuthHandler(authService, resetService)

	return router.NewRouter(userHandler, authHandler, authService)
}

func runMigrations() {
	cfg := config.AppConfig.Database
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	mig, err := migrate.New("file://db/migrations", connStr)
	if err != nil {
		logger.Log.Fatalf("cannot create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Log.Fatalf("failed to run migrate up: %v", err)
	}
	logger.Log.Info("Database migrations applied")
}

// TestApp bundles the wired application for integration tests.
type TestApp struct {
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

// NewTestApp wires the application against the given connections.
func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	return &TestApp{
		DB:     database,
		Redis:  redisClient,
		Router: buildRouter(database, redisClient),
	}
}

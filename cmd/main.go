package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/sportsmanagency/backend/docs"
	"github.com/sportsmanagency/backend/internal/auth/middleware"
	"github.com/sportsmanagency/backend/internal/auth/service"
	"github.com/sportsmanagency/backend/internal/config"
	"github.com/sportsmanagency/backend/internal/handlers"
	"github.com/sportsmanagency/backend/internal/logger"
	loggerMiddleware "github.com/sportsmanagency/backend/internal/logger/middleware"
	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/sportsmanagency/backend/internal/middlewares"
	"github.com/sportsmanagency/backend/internal/models"
	"github.com/sportsmanagency/backend/internal/repositories"
	"github.com/sportsmanagency/backend/internal/services"
	"github.com/sportsmanagency/backend/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	maxRequestSize  = 10 * 1024 * 1024 // 10MB
	rateLimitWindow = 15 * time.Minute
)

// @title Sports Agency CMS API
// @version 1.0
// @description Content API for the agency website: news, moderated comments, likes and staff accounts

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting CMS backend")

	metrics.Register()

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	imageStorage, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	newsRepo := repositories.NewNewsRepository(db, logger.Logger)
	commentRepo := repositories.NewCommentRepository(db, logger.Logger)
	likeRepo := repositories.NewLikeRepository(db, logger.Logger)

	// Initialize session components
	tokenService := service.NewTokenService(cfg.Session.Secret, cfg.Session.TokenTTL)
	sessionGuard := service.NewSessionGuard(tokenService, userRepo, cfg.Session.InactivityTTL, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenService, logger.Logger)
	userService := services.NewUserService(userRepo, logger.Logger)
	newsService := services.NewNewsService(newsRepo, imageStorage, logger.Logger)
	commentService := services.NewCommentService(commentRepo, newsRepo, logger.Logger)
	likeService := services.NewLikeService(likeRepo, newsRepo, logger.Logger)

	if cfg.Admin.Enabled() {
		created, err := userService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			logger.Logger.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
		if created {
			logger.Logger.Info("Bootstrap admin account created", zap.String("username", cfg.Admin.Username))
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	newsHandler := handlers.NewNewsHandler(newsService, logger.Logger)
	commentHandler := handlers.NewCommentHandler(commentService, logger.Logger)
	likeHandler := handlers.NewLikeHandler(likeService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(sessionGuard, logger.Logger)
	editorMiddleware := middleware.RoleMiddleware(models.RoleEditor)
	adminMiddleware := middleware.RoleMiddleware(models.RoleAdmin)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.ClientIPMiddleware(cfg.Server.TrustForwardedFor))
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(chiMiddleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(chiMiddleware.SetHeader("Referrer-Policy", "strict-origin-when-cross-origin"))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Operational endpoints
	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())
	r.Handle(cfg.Uploads.URLPrefix+"/*", http.StripPrefix(cfg.Uploads.URLPrefix, http.FileServer(http.Dir(imageStorage.Dir()))))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api", func(r chi.Router) {
		// Login attempts
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(5))
			authHandler.RegisterLoginRoutes(r)
		})
		// Session liveness checks
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(50))
			r.Use(authMiddleware)
			authHandler.RegisterSessionRoutes(r)
		})
		// Anonymous readers
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(100))
			newsHandler.RegisterPublicRoutes(r)
			commentHandler.RegisterPublicRoutes(r)
			likeHandler.RegisterRoutes(r)
		})
		// Editors and above
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(200))
			r.Use(authMiddleware)
			r.Use(editorMiddleware)
			newsHandler.RegisterEditorRoutes(r)
		})
		// Administrators
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(200))
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			newsHandler.RegisterAdminRoutes(r)
			commentHandler.RegisterAdminRoutes(r)
			userHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// rateLimit limits requests per resolved client ip over the shared window
func rateLimit(requests int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		rateLimitWindow,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return middlewares.GetClientIP(r.Context()), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests","code":"rate_limited"}`))
		}),
	)
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "cms_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

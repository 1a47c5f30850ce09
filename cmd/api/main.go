package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/knowara/portal/internal/auth"
	"github.com/knowara/portal/internal/config"
	"github.com/knowara/portal/internal/database"
	"github.com/knowara/portal/internal/handlers"
	middlewareCustom "github.com/knowara/portal/internal/middleware"
	"github.com/knowara/portal/internal/models"
	"github.com/knowara/portal/internal/repositories"
	"github.com/knowara/portal/internal/routes"
	"github.com/knowara/portal/internal/services"
	pkgauth "github.com/knowara/portal/pkg/auth"
	pkghttp "github.com/knowara/portal/pkg/http"
	pkglogger "github.com/knowara/portal/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Apply pending migrations before serving traffic
	if err := database.Migrate(cfg.Database.DSN()); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	boardRepo := repositories.NewBoardRepository(db)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Email notifications, disabled deployments fall back to a no-op sender
	var notifier services.EmailNotifier = &services.NoopEmailService{}
	if cfg.Email.Enabled {
		sesService, err := services.NewAWSSESEmailService(
			cfg.Email.AWSRegion,
			cfg.Email.FromAddress,
			cfg.Email.AdminAddress,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesService
	}

	// Initialize services
	authService := services.NewAuthService(
		accountRepo,
		roleRepo,
		tokenManager,
		notifier,
		logger,
		auditLogger,
		cfg.Server.Env,
		cfg.Auth.MaxFailedLoginAttempts,
	)
	boardService := services.NewBoardService(boardRepo, accountRepo, logger, auditLogger)
	accountService := services.NewAccountService(accountRepo, logger, auditLogger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	boardHandler := handlers.NewBoardHandler(boardService)
	accountHandler := handlers.NewAccountHandler(accountService)

	// Bootstrap first admin account if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(ctx, accountRepo, roleRepo, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middlewareCustom.MaxBodyBytes(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes under the API prefix
	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, boardHandler, accountHandler, tokenManager, accountRepo)
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable,
				pkghttp.Err("unhealthy", "database unavailable", nil))
			return
		}

		pkghttp.WriteOK(w, map[string]string{"database": "up"}, "healthy")
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminAccount creates the first administrator if ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD are set.
func ensureAdminAccount(ctx context.Context, accountRepo *repositories.AccountRepository, roleRepo *repositories.RoleRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME, ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin account creation")
		return nil
	}

	// Check if the admin already exists
	_, err := accountRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin account already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	adminRole, err := roleRepo.GetByName(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	admin := &models.Account{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Administrator",
		Active:       true,
		Roles:        []models.Role{*adminRole},
	}

	if _, err := accountRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("admin account created successfully")
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/background"
	"github.com/BradenHooton/sentinel/internal/config"
	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/handlers"
	"github.com/BradenHooton/sentinel/internal/repositories"
	"github.com/BradenHooton/sentinel/internal/routes"
	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
	"github.com/BradenHooton/sentinel/pkg/logger"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	attemptRepo := repositories.NewLoginAttemptRepository(db)
	accountRepo := repositories.NewAccountRepository(db)

	dispatcher, err := services.NewAWSSESDispatcher(cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.BaseURL, log)
	if err != nil {
		log.Error("failed to initialize email dispatcher", slog.Any("error", err))
		os.Exit(1)
	}

	auditLog := logger.NewAuditLogger(log)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	timing := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Security.TimingDelayBaseMs,
		RandomDelayMs: cfg.Security.TimingDelayRandomMs,
	})

	limiter := services.NewRateLimitService(attemptRepo, services.RateLimitConfig{
		IPWindow:       cfg.Security.IPFailureWindow,
		IPThreshold:    cfg.Security.IPFailureThreshold,
		EmailWindow:    cfg.Security.EmailFailureWindow,
		EmailThreshold: cfg.Security.EmailFailureThreshold,
	}, log)

	recognizer := services.NewRecognizerService(attemptRepo, services.RecognizerConfig{
		Lookback: cfg.Security.RecognizerLookback,
		Limit:    cfg.Security.RecognizerLimit,
	}, log)

	loginService := services.NewLoginService(
		attemptRepo,
		accountRepo,
		limiter,
		recognizer,
		services.NewNoopGeoResolver(),
		dispatcher,
		tokenManager,
		timing,
		auditLog,
		services.LoginConfig{
			ConfirmationTTL:  cfg.Security.ConfirmationTTL,
			AttemptRetention: cfg.Security.AttemptRetention,
			NotifyTimeout:    cfg.Security.NotifyTimeout,
			AccessExpiry:     cfg.Auth.AccessTokenExpiry,
		},
		log,
	)

	confirmationService := services.NewConfirmationService(
		attemptRepo,
		accountRepo,
		dispatcher,
		auditLog,
		services.ConfirmationConfig{
			TTL:             cfg.Security.ConfirmationTTL,
			DenySweepWindow: cfg.Security.DenySweepWindow,
			NotifyTimeout:   cfg.Security.NotifyTimeout,
		},
		log,
	)

	dashboardService := services.NewDashboardService(attemptRepo, services.DashboardConfig{
		Lookback: cfg.Security.RecognizerLookback,
		Limit:    50,
	}, log)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(loginService, ipConfig, log)
	securityHandler := handlers.NewSecurityHandler(confirmationService, dashboardService, log)

	router := routes.NewRouter(cfg, db, authHandler, securityHandler, auth.Validator(tokenManager), log)

	cleanup := background.NewCleanupManager(attemptRepo, cfg.Security.CleanupInterval, log)
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go cleanup.Start(cleanupCtx)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", slog.String("port", cfg.Server.Port), slog.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancelCleanup()
	cleanup.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

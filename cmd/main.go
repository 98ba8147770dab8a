package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/config"
	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/db"
	_ "github.com/Dosada05/contesthub/docs"
	"github.com/Dosada05/contesthub/handlers"
	"github.com/Dosada05/contesthub/logger"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/repositories"
	api "github.com/Dosada05/contesthub/routes"
	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/session"
	"github.com/Dosada05/contesthub/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// @title ContestHub API
// @version 1.0
// @description Creative contest platform: contests, submissions, judging and leaderboard.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("configuration loaded", zap.Int("port", cfg.ServerPort))

	decimal.MarshalJSONWithoutQuotes = true

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		} else {
			log.Info("database connection closed")
		}
	}()
	log.Info("database connection established")

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.CreateSchema(schemaCtx, dbConn)
	cancelSchema()
	if err != nil {
		log.Fatal("failed to create database schema", zap.Error(err))
	}

	leaderboardCache := cache.NewNoopLeaderboardCache()
	if cfg.RedisAddr != "" {
		redisClient, err := cache.Connect(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 3*time.Second)
		if err != nil {
			log.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			leaderboardCache = cache.NewRedisLeaderboardCache(redisClient, cfg.LeaderboardCacheTTL)
			log.Info("leaderboard cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	uploader := storage.NewDisabledUploader()
	if cfg.UploadsEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize Cloudflare R2 uploader", zap.Error(err))
		}
		log.Info("Cloudflare R2 uploader initialized")
	} else {
		log.Warn("R2 is not configured, uploads are disabled")
	}

	gateway := payments.NewLedgerGateway()
	tx := repositories.NewTransactor(dbConn)

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	contestRepo := repositories.NewPostgresContestRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	packageRepo := repositories.NewPostgresPackageRepository(dbConn)
	paymentRepo := repositories.NewPostgresPaymentRepository(dbConn)

	authService := services.NewAuthService(userRepo, leaderboardCache, log)
	userService := services.NewUserService(userRepo, contestRepo, uploader, log)
	contestService := services.NewContestService(tx, contestRepo, packageRepo, paymentRepo, userRepo, gateway, uploader, leaderboardCache, log)
	submissionService := services.NewSubmissionService(tx, contestRepo, submissionRepo, userRepo, leaderboardCache, log)
	packageService := services.NewPackageService(tx, packageRepo, paymentRepo, gateway, log)
	leaderboardService := services.NewLeaderboardService(userRepo, leaderboardCache, log)
	adminService := services.NewAdminUserService(userRepo, leaderboardCache, log)
	statsService := services.NewDashboardService(userRepo, contestRepo)

	dashboards := dashboard.NewRouter(contestService, submissionService, packageService, adminService, statsService)

	tokens := session.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTTTL)
	resolver := session.NewResolver(tokens, userRepo)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, tokens),
		Contest:     handlers.NewContestHandler(contestService, dashboards),
		Submission:  handlers.NewSubmissionHandler(dashboards),
		Admin:       handlers.NewAdminHandler(dashboards),
		User:        handlers.NewUserHandler(userService, packageService),
		Package:     handlers.NewPackageHandler(packageService, dashboards),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Dashboard:   handlers.NewDashboardHandler(dashboards),
		Health:      handlers.NewHealthHandler(dbConn),
	}, api.Options{
		Resolver:       resolver,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	log.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(log),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			return
		}
		log.Info("server stopped gracefully")
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			if closeErr := server.Close(); closeErr != nil {
				log.Error("failed to force close server", zap.Error(closeErr))
			}
			return
		}
		log.Info("server shutdown complete")
	}
	log.Info("application exited")
}

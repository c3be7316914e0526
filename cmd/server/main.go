package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/database"
	"github.com/certifex/certifex-backend/internal/handler"
	"github.com/certifex/certifex-backend/internal/logger"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/router"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Certifex Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	codeRepo := repository.NewCodeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	certRepo := repository.NewCertificateRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	statementRepo := repository.NewStatementRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo)
	monitorService := service.NewMonitorService(rdb, log)
	contentService := service.NewContentService(examRepo, contentRepo, rdb, log)
	accessService := service.NewAccessService(examRepo, contentRepo, sessionRepo, monitorService, log)
	sessionService := service.NewSessionService(sessionRepo, answerRepo, contentRepo, monitorService, log)
	answerService := service.NewAnswerService(answerRepo, contentService, monitorService, log)
	codeService := service.NewCodeService(cfg, examRepo, codeRepo, log)
	userService := service.NewUserService(authService, userRepo, log)
	registryService := service.NewRegistryService(userRepo, certRepo, log)
	reviewService := service.NewReviewService(userRepo, reviewRepo, log)
	statementService := service.NewStatementService(statementRepo, log)
	mediaService := service.NewMediaService(cfg, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService, accessService),
		Exam:      handler.NewExamHandler(contentService, accessService),
		Session:   handler.NewSessionHandler(sessionService, answerService, mediaService),
		Content:   handler.NewContentHandler(contentService),
		Result:    handler.NewResultHandler(sessionService, mediaService),
		Code:      handler.NewCodeHandler(codeService),
		User:      handler.NewUserHandler(userService),
		Registry:  handler.NewRegistryHandler(registryService, mediaService),
		Review:    handler.NewReviewHandler(reviewService),
		Statement: handler.NewStatementHandler(statementService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		WS:        handler.NewWSHandler(monitorService, log, cfg.AllowedOrigins),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every exam's config and answer-key hash into Redis BEFORE
	// accepting traffic, so answer validation never stampedes Postgres.
	if err := contentService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, sessionService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

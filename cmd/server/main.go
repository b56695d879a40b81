package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/database"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/handler"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/logger"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/repository"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/router"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/validator"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/worker"
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
		Msg("Starting Ebdaa exam backend")

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
	questionRepo := repository.NewQuestionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	questionCache := repository.NewCachedQuestionStore(questionRepo, rdb, cfg.QuestionCacheTTL, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	examService := service.NewExamService(examRepo, submissionRepo, log)
	leaderboardService := service.NewLeaderboardService(rdb, submissionRepo, cfg.LeaderboardSize, log)
	sessionService := service.NewSessionService(
		examService,
		authService,
		session.NewQuestionSetLoader(questionCache),
		submissionRepo,
		rdb,
		repository.NewSessionStateRepository(rdb),
		session.SystemClock(),
		cfg.SessionRetention,
		log,
	)

	// ─── Prewarm Redis ────────────────────────────────────────────────
	// Question sets of open exams and the leaderboard are loaded before
	// accepting traffic so the first wave of learners does not stampede
	// PostgreSQL.
	prewarmQuestions(ctx, examRepo, questionCache, log)
	if err := leaderboardService.Rebuild(ctx); err != nil {
		log.Warn().Err(err).Msg("Leaderboard rebuild failed")
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	leaderboardWorker := worker.NewLeaderboardWorker(rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		leaderboardWorker.Start(workerCtx)
	}()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Learner:     handler.NewLearnerHandler(examService, log),
		Session:     handler.NewSessionHandler(sessionService, log),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, log),
		WS:          handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, sessionService, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Close exam sessions. Sessions still in progress are abandoned.
	sessionCtx, sessionCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer sessionCancel()

	if err := sessionService.Shutdown(sessionCtx); err != nil {
		log.Error().Err(err).Msg("Session shutdown error")
	}

	// 3. Stop background workers and wait for their final flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// prewarmQuestions caches the question sets of exams a learner could open now.
func prewarmQuestions(ctx context.Context, exams *repository.ExamRepository, cache *repository.CachedQuestionStore, log zerolog.Logger) {
	all, err := exams.ListAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
		return
	}

	now := time.Now()
	ids := make([]int64, 0, len(all))
	for _, e := range all {
		if e.Classify(false, now) == model.AvailabilityAvailable {
			ids = append(ids, e.ID)
		}
	}
	warmed := cache.Prewarm(ctx, ids)
	log.Info().Int("exams", warmed).Msg("Question cache prewarmed")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

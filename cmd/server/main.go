package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/database"
	"github.com/classtrack/attendance-backend/internal/handler"
	"github.com/classtrack/attendance-backend/internal/logger"
	"github.com/classtrack/attendance-backend/internal/repository"
	"github.com/classtrack/attendance-backend/internal/router"
	"github.com/classtrack/attendance-backend/internal/service"
	"github.com/classtrack/attendance-backend/internal/timeutil"
	"github.com/classtrack/attendance-backend/internal/validator"
	"github.com/classtrack/attendance-backend/internal/worker"
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
		Msg("Starting ClassTrack Backend")

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
	sessionRepo := repository.NewSessionRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	delegateRepo := repository.NewDelegateRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	// All session status decisions derive from this one clock.
	clock := timeutil.Clock(timeutil.NowUTC)
	notifier := service.NewRosterNotifier(rdb)

	authService := service.NewAuthService(cfg, rdb, studentRepo, delegateRepo)
	sessionService := service.NewSessionService(sessionRepo, classRepo, courseRepo, enrollmentRepo, attendanceRepo, studentRepo, clock, log)
	attendanceService := service.NewAttendanceService(sessionRepo, classRepo, enrollmentRepo, attendanceRepo, notifier, clock, log)
	closureService := service.NewClosureService(sessionRepo, classRepo, attendanceRepo, notifier, clock, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, studentRepo, delegateRepo),
		Session:    handler.NewSessionHandler(sessionService),
		Attendance: handler.NewAttendanceHandler(sessionService, attendanceService),
		WS:         handler.NewWSHandler(rdb, sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	lifecycleWatcher := worker.NewLifecycleWatcher(sessionRepo, rdb, cfg, clock, log)
	closureWorker := worker.NewClosureWorker(closureService, rdb, log)

	go lifecycleWatcher.Start(workerCtx)
	go closureWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the closure queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/database"
	"github.com/tuwir2002/maligo-backend/internal/handler"
	"github.com/tuwir2002/maligo-backend/internal/logger"
	"github.com/tuwir2002/maligo-backend/internal/repository"
	"github.com/tuwir2002/maligo-backend/internal/router"
	"github.com/tuwir2002/maligo-backend/internal/service"
	"github.com/tuwir2002/maligo-backend/internal/validator"
	"github.com/tuwir2002/maligo-backend/internal/worker"
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
		Msg("Starting Maligo Backend")

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
	studentRepo := repository.NewStudentRepository(pool)
	lecturerRepo := repository.NewLecturerRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	rekapRepo := repository.NewRekapRepository(pool)
	skripsiRepo := repository.NewSkripsiRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService)
	lecturerService := service.NewLecturerService(lecturerRepo, authService)
	courseService := service.NewCourseService(courseRepo)
	examService := service.NewExamService(examRepo, courseRepo, rdb, log)
	rekapService := service.NewRekapService(rekapRepo, answerRepo, courseRepo, studentRepo, rdb, log)
	quizService := service.NewQuizService(quizRepo, courseRepo, answerRepo, rekapService, log)
	sessionService := service.NewSessionService(examService, rekapService, sessionRepo, answerRepo, rdb, cfg, log)
	gradingService := service.NewGradingService(answerRepo, examRepo, courseRepo, rekapService, log)
	skripsiService := service.NewSkripsiService(skripsiRepo)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(studentService, lecturerService, log),
		StudentPortal: handler.NewStudentPortalHandler(studentService, courseService, examService, quizService, sessionService, rekapService, log),
		Lecturer:      handler.NewLecturerHandler(courseService, examService, quizService, sessionService, rekapService, gradingService, studentService, log),
		Skripsi:       handler.NewSkripsiHandler(skripsiService, mediaService, log),
		Monitor:       handler.NewMonitorHandler(rdb, examService, sessionService, log),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	draftWorker := worker.NewDraftWorker(answerRepo, rdb, log)
	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	rekapWorker := worker.NewRekapWorker(rekapService, rdb, log)

	go draftWorker.Start(workerCtx)
	go violationWorker.Start(workerCtx)
	go rekapWorker.Start(workerCtx)

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

	// 2. Park live exam sessions. Drafts stay in Redis and sessions in
	// Postgres, so students resume on the next boot without losing time.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/cache"
	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/handlers"
	"peerprep/avatar/internal/jobs"
	"peerprep/avatar/internal/metrics"
	"peerprep/avatar/internal/orchestrator"
	"peerprep/avatar/internal/question"
	_ "peerprep/avatar/internal/question/gemini"
	_ "peerprep/avatar/internal/question/remote"
	"peerprep/avatar/internal/routers"
	"peerprep/avatar/internal/session"
	"peerprep/avatar/internal/speech"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, videoHandler *handlers.VideoHandler, avatarHandler *handlers.AvatarHandler, wsHandler *handlers.WSHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, videoHandler, avatarHandler, wsHandler)
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("question_provider", cfg.QuestionProvider),
		zap.Bool("avatar_configured", cfg.AvatarConfigured()))

	// question provider based on configuration
	questionProvider, err := question.NewProvider(cfg.QuestionProvider)
	if err != nil {
		logger.Fatal("Failed to initialize question provider", zap.Error(err))
	}

	// speech synthesis
	voice := speech.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice)
	speechEngine := speech.NewEngine(voice, logger)

	// avatar video generation
	store := cache.New(cfg.RedisAddr)
	avatarClient := avatar.NewClient(cfg, store, logger)
	tracker := avatar.NewTracker(avatarClient, cfg.GenerationTimeout, logger)

	registry := session.NewRegistry()
	orch := orchestrator.New(registry, questionProvider, speechEngine, avatarClient, tracker, logger)

	interviewHandler := handlers.NewInterviewHandler(orch, logger)
	videoHandler := handlers.NewVideoHandler(tracker, logger)
	avatarHandler := handlers.NewAvatarHandler(avatarClient, logger)
	wsHandler := handlers.NewWSHandler(orch, logger)
	healthHandler := handlers.NewHealthHandler(questionProvider, speechEngine, cfg)

	// background cleanup of idle sessions and finished video jobs
	cleanupJob := jobs.NewCleanupJob(registry, tracker, &jobs.CleanupConfig{
		Schedule:          cfg.CleanupSchedule,
		SessionTimeout:    cfg.SessionTimeout,
		VideoJobRetention: cfg.VideoJobRetention,
	}, logger)
	if err := cleanupJob.Start(); err != nil {
		logger.Fatal("Failed to start cleanup job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://d1z9c2graxigrz.cloudfront.net"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer)
	router.Use(metrics.Middleware("avatar"))

	registerRoutes(router, interviewHandler, videoHandler, avatarHandler, wsHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts; no write timeout because the websocket
	// endpoint holds its connection open
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Avatar interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Avatar interview service shutting down...")

	cleanupJob.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Avatar interview service exited")
}

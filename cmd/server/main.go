package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-page-quiz/internal/config"
	"github.com/aliskhannn/quran-page-quiz/internal/delivery/ws"
	"github.com/aliskhannn/quran-page-quiz/internal/infra/quranapi"
	"github.com/aliskhannn/quran-page-quiz/internal/infra/rediscache"
	"github.com/aliskhannn/quran-page-quiz/internal/infra/sheets"
	"github.com/aliskhannn/quran-page-quiz/internal/logger"
	"github.com/aliskhannn/quran-page-quiz/internal/service"
)

func main() {
	// Load environment variables from .env file if present.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure clients.
	quran := quranapi.NewClient(cfg.QuranAPI.BaseURL, cfg.QuranAPI.Timeout)
	sheet := sheets.NewClient(cfg.Sheets.ScriptURL, cfg.Sheets.Timeout)

	// The page cache is optional: without a Redis address the quiz reads
	// pages straight from the API.
	var verseSource ws.VerseSource = quran
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unavailable, page cache disabled", zap.Error(err))
		} else {
			verseSource = rediscache.NewPageCache(rdb, quran, cfg.Redis.PageTTL)
			defer rdb.Close()
		}
	}

	// Initialize services.
	playerService := service.NewPlayerService(sheet, zl)
	quizService := service.NewQuizService(sheet, sheet, sheet, zl)
	if err := quizService.Init(ctx); err != nil {
		zl.Fatal("quiz service init failed", zap.Error(err))
	}

	handler := ws.NewHandler(zl, playerService, verseSource, quizService, cfg.Quiz.FeedbackDelay)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/ws", handler.ServeWS)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
}

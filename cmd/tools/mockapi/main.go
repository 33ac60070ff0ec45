// Command mockapi serves an in-memory seller backend for local development.
// It logs in demo/123456 and seeds three products.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/config"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/mockapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	srv, err := mockapi.New(mockapi.Options{
		JWTSecret: cfg.MockAPI.JWTSecret,
		Storage:   files,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("mockapi: %v", err)
	}

	hs := &http.Server{
		Addr:              cfg.MockAPI.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("mockapi_listen", slog.String("addr", cfg.MockAPI.Addr), slog.Any("storage", files))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mockapi_serve_failed", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/activity"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/catalog"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/config"
	apphttp "github.com/penababayev/zakaz-zenan-zahmeti/internal/http"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	cfg.Print(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := sessionStore(cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	events, closeEvents := activitySink(cfg, logger)
	defer closeEvents()

	api := sellerapi.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})

	workspaces := catalog.NewRegistry()
	go cleanup(ctx, sessions, workspaces, logger)

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:       logger,
		API:          api,
		Sessions:     sessions,
		Events:       events,
		Secret:       []byte(cfg.Session.Secret),
		SecureCookie: cfg.Cookie.Secure,
		SessionTTL:   cfg.Session.TTL,
		Workspaces:   workspaces,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http_listen", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_serve_failed", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", slog.Any("err", err))
	}
	logger.Info("http_stopped")
}

func sessionStore(cfg config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "", "memory":
		return session.NewMemoryStore(), nil
	case "mysql":
		if cfg.DB.DSN == "" {
			return nil, errors.New("DB_DSN is required for the mysql session store")
		}
		db, err := session.OpenMySQL(cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		return session.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.Session.Store)
	}
}

// cleanup drops expired sessions and the workspaces of sessions that
// expired without the seller coming back.
func cleanup(ctx context.Context, sessions session.Store, workspaces *catalog.Registry, logger *slog.Logger) {
	t := time.NewTicker(15 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if p, ok := sessions.(session.Purger); ok {
				n, err := p.PurgeExpired(ctx)
				if err != nil {
					logger.Warn("session_purge_failed", slog.Any("err", err))
				} else if n > 0 {
					logger.Info("session_purged", slog.Int64("count", n))
				}
			}
			if n := workspaces.Sweep(now); n > 0 {
				logger.Info("workspaces_swept", slog.Int("count", n))
			}
		}
	}
}

func activitySink(cfg config.Config, logger *slog.Logger) (activity.Sink, func()) {
	switch cfg.Activity.Sink {
	case "kafka":
		k := activity.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		return k, func() {
			if err := k.Close(); err != nil {
				logger.Warn("kafka_close_failed", slog.Any("err", err))
			}
		}
	case "none":
		return activity.Nop{}, func() {}
	default:
		return activity.NewLogSink(logger), func() {}
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roomstatus/internal/catalogcache"
	"roomstatus/internal/httpapi"
	"roomstatus/internal/notify"
	"roomstatus/internal/store"
	"roomstatus/internal/tracking"
	"roomstatus/pkg/config"
	"roomstatus/pkg/db"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		fatal(logger, "db open", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			fatal(logger, "migrate", err)
		}
	}

	opts := []tracking.Option{tracking.WithLogger(logger)}

	if cfg.Redis.Addr != "" {
		rdb := catalogcache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		opts = append(opts, tracking.WithCatalogCache(catalogcache.New(rdb, cfg.Redis.TTL, logger)))
		logger.Info("catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	if cfg.AMQP.URL != "" {
		mq, err := notify.Dial(cfg.AMQP.URL)
		if err != nil {
			fatal(logger, "amqp dial", err)
		}
		defer mq.Close()
		opts = append(opts, tracking.WithNotifier(notify.NewPublisher(mq, cfg.AMQP.Exchange)))
		logger.Info("status change notifications enabled", "exchange", cfg.AMQP.Exchange)
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		Tracking: tracking.NewService(store.NewPostgres(conn), opts...),
		Log:      logger,
		Ready:    conn.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "http serve", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

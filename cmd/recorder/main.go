package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/orderbook-recorder/internal/config"
	"github.com/rickgao/orderbook-recorder/internal/connection"
	"github.com/rickgao/orderbook-recorder/internal/database"
	"github.com/rickgao/orderbook-recorder/internal/logging"
	"github.com/rickgao/orderbook-recorder/internal/market"
	"github.com/rickgao/orderbook-recorder/internal/snapshot"
	"github.com/rickgao/orderbook-recorder/internal/version"
	"github.com/rickgao/orderbook-recorder/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/recorder.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	check := flag.Bool("check", false, "validate config and instruments, then exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger, logCloser, err := logging.New(loggingConfig(cfg.Logging))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting recorder",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	registry, err := cfg.Registry()
	if err != nil {
		logger.Error("invalid instruments", "error", err)
		os.Exit(1)
	}

	groups := registry.Partition(cfg.Feed.Connections)
	logger.Info("instruments loaded",
		"identifiers", registry.Len(),
		"connections", len(groups),
	)

	if *check {
		for _, label := range registry.Labels() {
			id, _ := registry.Identifier(label)
			fmt.Printf("%s\t%s\n", label, id)
		}
		fmt.Printf("ok: %d identifiers across %d connection(s)\n", registry.Len(), len(groups))
		return
	}

	if err := run(cfg, registry, groups, logger); err != nil {
		logger.Error("recorder failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.RecorderConfig, registry *market.Registry, groups [][]string, logger *slog.Logger) error {
	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Open the durable store
	store, pool, err := openSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// One writer goroutine owns the store for every connection.
	sink := writer.NewSerialSink(store, logger.With("component", "sink"))
	if err := sink.Start(context.Background()); err != nil {
		return fmt.Errorf("start sink: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := sink.Stop(stopCtx); err != nil {
			logger.Error("failed to close sink", "error", err)
		}
	}()

	logger.Warn("records that fail to write are logged and skipped, not retried",
		"sink", cfg.Sink.Kind,
	)

	proc := snapshot.NewProcessor(registry, sink, logger.With("component", "processor"))

	supCfg := supervisorConfig(cfg.Feed)
	supervisors := make([]*connection.Supervisor, len(groups))
	views := make([]supervisorView, len(groups))
	for i, ids := range groups {
		supervisors[i] = connection.NewSupervisor(i+1, supCfg, ids, proc, logger)
		views[i] = supervisors[i]
	}

	// Health server
	var healthServer *http.Server
	if cfg.Health.Port > 0 {
		var db pinger
		if pool != nil {
			db = pool
		}
		healthServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
			Handler:           newHealthHandler(views, registry, proc, db),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sup := range supervisors {
		g.Go(func() error {
			return sup.Run(gctx)
		})
	}

	logger.Info("recorder running",
		"instance_id", cfg.Instance.ID,
		"feed", cfg.Feed.URL,
	)

	err = g.Wait()

	logger.Info("shutting down...")

	if healthServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}

	stats := proc.Stats()
	logger.Info("recorder stopped",
		"written", stats.Written,
		"write_errors", stats.WriteErrors,
		"unknown_label", stats.UnknownLabel,
	)
	return err
}

// openSink opens the configured store. The pool is non-nil for postgres and
// must be closed by the caller after the sink.
func openSink(ctx context.Context, cfg *config.RecorderConfig, logger *slog.Logger) (writer.Sink, *pgxpool.Pool, error) {
	switch cfg.Sink.Kind {
	case config.SinkPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		pool, err := database.Connect(connectCtx, cfg.Sink.Postgres.DB, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		sink := writer.NewPostgresSink(writer.PostgresConfig{
			Table:        cfg.Sink.Postgres.Table,
			WriteTimeout: cfg.Sink.Postgres.WriteTimeout,
		}, pool, logger)
		return sink, pool, nil

	default:
		sink, err := writer.OpenCSV(cfg.Sink.CSV.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv sink: %w", err)
		}
		logger.Info("csv sink ready", "path", sink.Path())
		return sink, nil, nil
	}
}

func supervisorConfig(f config.FeedConfig) connection.SupervisorConfig {
	return connection.SupervisorConfig{
		URL:              f.URL,
		Channel:          f.Channel,
		PingMessage:      f.PingMessage,
		PongMessage:      f.PongMessage,
		PingInterval:     f.PingInterval,
		ReceiveTimeout:   f.ReceiveTimeout,
		ReconnectDelay:   f.ReconnectDelay,
		HandshakeTimeout: f.HandshakeTimeout,
		WriteTimeout:     f.WriteTimeout,
		StaleTimeout:     f.StaleTimeout,
		BufferSize:       f.BufferSize,
	}
}

func loggingConfig(l config.LoggingConfig) logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

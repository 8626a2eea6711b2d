package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/orderbook-recorder/internal/api"
	"github.com/rickgao/orderbook-recorder/internal/config"
	"github.com/rickgao/orderbook-recorder/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "optional recorder config; its catalog section is used")
	baseURL := flag.String("url", "", "catalog base URL (overrides config)")
	slug := flag.String("slug", "", "case-insensitive substring of the market slug (required)")
	openOnly := flag.Bool("open", false, "skip closed and archived markets")
	format := flag.String("format", "text", "output format: text or yaml")
	outPath := flag.String("out", "", "write output to this file instead of stdout")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall search deadline")
	verbose := flag.Bool("v", false, "log each catalog page")
	flag.Parse()

	if *slug == "" {
		fmt.Fprintln(os.Stderr, "-slug is required")
		flag.Usage()
		os.Exit(2)
	}
	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown -format %q\n", *format)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig()
	logCfg.File = "stderr"
	if *verbose {
		logCfg.Level = "debug"
	}
	logger, _, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	catalog, err := catalogConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		catalog.URL = *baseURL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	client := api.NewClient(catalog.URL,
		api.WithLogger(logger),
		api.WithTimeout(catalog.Timeout),
		api.WithRetries(catalog.MaxRetries, time.Second),
		api.WithRateLimit(catalog.RequestsPerSecond, catalog.Burst),
	)

	predicate := api.SlugContains(*slug)
	if *openOnly {
		predicate = api.OpenOnly(predicate)
	}

	logger.Info("starting search", "url", catalog.URL, "slug", *slug)
	found, err := client.SearchMarkets(ctx, predicate)
	if err != nil {
		// Partial results are still printed.
		logger.Error("search incomplete", "error", err, "matched", len(found))
	} else {
		logger.Info("search complete", "matched", len(found))
	}

	if werr := emit(*outPath, *format, found); werr != nil {
		logger.Error("failed to write output", "error", werr)
		os.Exit(1)
	}

	if err != nil {
		os.Exit(1)
	}
}

// emit writes markets to path, or to stdout when path is empty.
func emit(path, format string, markets []api.Market) error {
	if path == "" {
		return write(os.Stdout, format, markets)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, format, markets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// catalogConfig returns catalog settings from the recorder config, or the
// defaults when no config is given.
func catalogConfig(path string) (config.CatalogConfig, error) {
	if path == "" {
		return config.CatalogConfig{
			URL:               config.DefaultCatalogURL,
			Timeout:           config.DefaultCatalogTimeout,
			MaxRetries:        config.DefaultMaxRetries,
			RequestsPerSecond: config.DefaultRequestsPerSecond,
			Burst:             config.DefaultBurst,
		}, nil
	}

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return config.CatalogConfig{}, err
	}
	return cfg.Catalog, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/gnews-scraper/internal/app"
	"github.com/samvad-hq/gnews-scraper/internal/config"
	"github.com/samvad-hq/gnews-scraper/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scraper start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.InfoObj("scraper starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scraper, err := app.New(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize scraper", "error", err)
		return err
	}

	if err := scraper.Run(ctx); err != nil {
		return fmt.Errorf("scraper run: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caio-ishikawa/bountyboard/shared/config"
	"github.com/caio-ishikawa/bountyboard/shared/logging"
)

func main() {
	cfg, err := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	app, err := NewDaemon(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start daemon")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Daemon stopped")
	}
}

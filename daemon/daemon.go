package main

import (
	"context"
	"fmt"

	"github.com/caio-ishikawa/bountyboard/daemon/api"
	"github.com/caio-ishikawa/bountyboard/daemon/notify"
	"github.com/caio-ishikawa/bountyboard/daemon/store"
	"github.com/caio-ishikawa/bountyboard/shared/config"
	"github.com/rs/zerolog"
)

type Daemon struct {
	db     store.Database
	api    api.API
	config config.Config
	log    zerolog.Logger
}

func NewDaemon(cfg config.Config, logger zerolog.Logger) (Daemon, error) {
	db, err := store.Init(cfg.Server.DBPath)
	if err != nil {
		return Daemon{}, fmt.Errorf("Failed to start DB client: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramEnabled() {
		telegram, err := notify.NewTelegramClient(cfg.Telegram.ChatID, cfg.Telegram.APIKey)
		if err != nil {
			db.Close()
			return Daemon{}, fmt.Errorf("Failed to start Telegram client: %w", err)
		}
		notifier = telegram
		logger.Info().Msg("[TELEGRAM] Notifications enabled for critical and high vulnerabilities")
	}

	return Daemon{
		db:     db,
		api:    api.NewAPI(db, notifier, logger),
		config: cfg,
		log:    logger,
	}, nil
}

// Run serves the API until ctx is cancelled and closes the database afterwards.
func (d Daemon) Run(ctx context.Context) error {
	defer d.db.Close()

	d.log.Info().
		Str("db_path", d.config.Server.DBPath).
		Int("port", d.config.Server.Port).
		Msg("Starting daemon")

	return d.api.StartAPI(ctx, d.config.ListenAddr())
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/bot"
	"coinbank/config"
	"coinbank/events"
	"coinbank/models"
	"coinbank/recorder"
	"coinbank/repository"
	"coinbank/scheduler"
	"coinbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting coinbank bot...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Event bus
	eventBus := events.NewBus()

	// Ledger file repository
	repo, err := repository.NewLedgerRepository(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("failed to open ledger repository: %w", err)
	}

	// Wallet: the single authoritative balance store
	wallet, err := service.NewWalletService(
		repo,
		eventBus,
		cfg.Ledger.StartingBalance,
		cfg.Ledger.FlushPolicy == config.FlushWriteThrough,
		cfg.Ledger.InitializeFresh,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet: %w", err)
	}

	resolver := service.NewBetResolver(wallet)
	sessions := service.NewSessionService()
	limiter := service.NewRateLimiter(
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		cfg.RateLimit.MaxCommands,
	)
	stats := service.NewStatsService(wallet)

	// Game history recorder (observability only)
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		rec, err = recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open recorder: %w", err)
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	subscribeRecorder(eventBus, rec)

	// File watcher for external ledger modifications
	watcher := service.NewFileWatcher(repo, wallet)
	if cfg.Ledger.WatchIntervalSeconds > 0 {
		interval := time.Duration(cfg.Ledger.WatchIntervalSeconds) * time.Second
		if err := watcher.Start(interval); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	// Background jobs
	sched := scheduler.New(ctx, wallet)
	if cfg.Ledger.FlushPolicy == config.FlushBatched {
		if err := sched.RegisterFlush(cfg.Ledger.FlushCron); err != nil {
			return err
		}
	}
	if cfg.Daily.BonusAmount > 0 {
		if err := sched.RegisterDailyBonus(cfg.Daily.BonusCron, cfg.Daily.BonusAmount); err != nil {
			return err
		}
	}
	sched.Start()

	// Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, wallet, resolver, sessions, limiter, stats, watcher, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	<-ctx.Done()
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	if err := watcher.Stop(); err != nil && !errors.Is(err, service.ErrNotRunning) {
		log.WithError(err).Error("Error stopping file watcher")
	}
	sched.Stop()

	// Flush-on-shutdown is mandatory regardless of flush policy
	if err := wallet.Flush(); err != nil {
		log.WithError(err).Error("Final ledger flush failed")
	}
	if err := rec.Close(); err != nil {
		log.WithError(err).Error("Error closing recorder")
	}

	log.Info("Shutdown completed")
	return nil
}

// subscribeRecorder feeds game and reload events into the history recorder
func subscribeRecorder(bus *events.Bus, rec recorder.Recorder) {
	bus.Subscribe(events.EventTypeGamePlayed, func(ctx context.Context, event events.Event) {
		played, ok := event.(events.GamePlayedEvent)
		if !ok {
			return
		}
		err := rec.RecordGame(&models.GameOutcome{
			UserID:   played.UserID,
			Game:     played.Game,
			Wager:    played.Wager,
			Payout:   played.Payout,
			Won:      played.Won,
			Balance:  played.NewBalance,
			PlayedAt: time.Now(),
		})
		if err != nil {
			log.WithError(err).Warn("Failed to record game round")
		}
	})

	bus.Subscribe(events.EventTypeLedgerReloaded, func(ctx context.Context, event events.Event) {
		reloaded, ok := event.(events.LedgerReloadedEvent)
		if !ok {
			return
		}
		err := rec.RecordReload(&recorder.ReloadEvent{
			OldCount: reloaded.OldCount,
			NewCount: reloaded.NewCount,
			OldTotal: reloaded.OldTotal,
			NewTotal: reloaded.NewTotal,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to record ledger reload")
		}
	})
}

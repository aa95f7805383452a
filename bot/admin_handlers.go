package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleAdmin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	if !b.cfg.IsAdmin(userID) {
		respondEphemeral(s, i, "🚫 You are not allowed to use admin commands.")
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "setbalance":
		b.handleSetBalance(ctx, s, i, sub)
	case "reload":
		b.handleReload(ctx, s, i)
	case "watcher":
		b.handleWatcher(s, i, sub)
	case "unlock":
		b.handleUnlock(s, i, sub)
	}
}

func (b *Bot) handleSetBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var targetRaw string
	var amount int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "user":
			targetRaw = opt.UserValue(nil).ID
		case "amount":
			amount = opt.IntValue()
		}
	}

	targetID, err := strconv.ParseInt(targetRaw, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "❌ Could not resolve that user.")
		return
	}

	if err := b.wallet.SetBalance(ctx, targetID, amount); err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			respondEphemeral(s, i, "❌ Balance must not be negative.")
			return
		}
		respondEphemeral(s, i, "❌ "+err.Error())
		return
	}

	log.WithFields(log.Fields{
		"target":  targetID,
		"balance": amount,
	}).Info("Balance set by admin")
	respondEphemeral(s, i, fmt.Sprintf("✅ Set <@%d>'s balance to **%s coins**.", targetID, FormatBalance(amount)))
}

func (b *Bot) handleReload(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	report, err := b.wallet.ReloadData(ctx)
	if err != nil {
		respondEphemeral(s, i, "❌ Reload failed: "+err.Error())
		return
	}
	respondEphemeral(s, i, fmt.Sprintf(
		"🔄 Ledger reloaded: %d users / %s coins → %d users / %s coins.",
		report.OldCount, FormatBalance(report.OldTotal),
		report.NewCount, FormatBalance(report.NewTotal)))
}

func (b *Bot) handleWatcher(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	action := ""
	for _, opt := range sub.Options {
		if opt.Name == "action" {
			action = opt.StringValue()
		}
	}

	switch action {
	case "start":
		interval := time.Duration(b.cfg.Ledger.WatchIntervalSeconds) * time.Second
		if err := b.watcher.Start(interval); err != nil {
			if errors.Is(err, service.ErrAlreadyRunning) {
				respondEphemeral(s, i, "ℹ️ File watcher is already running.")
				return
			}
			respondEphemeral(s, i, "❌ "+err.Error())
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("👁️ File watcher started (every %s).", interval))
	case "stop":
		if err := b.watcher.Stop(); err != nil {
			if errors.Is(err, service.ErrNotRunning) {
				respondEphemeral(s, i, "ℹ️ File watcher is not running.")
				return
			}
			respondEphemeral(s, i, "❌ "+err.Error())
			return
		}
		respondEphemeral(s, i, "🛑 File watcher stopped.")
	case "status":
		if b.watcher.Running() {
			respondEphemeral(s, i, fmt.Sprintf("👁️ File watcher running, polling every %s.", b.watcher.Interval()))
		} else {
			respondEphemeral(s, i, "🛑 File watcher is stopped.")
		}
	}
}

func (b *Bot) handleUnlock(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var targetRaw string
	for _, opt := range sub.Options {
		if opt.Name == "user" {
			targetRaw = opt.UserValue(nil).ID
		}
	}

	targetID, err := strconv.ParseInt(targetRaw, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "❌ Could not resolve that user.")
		return
	}

	if b.sessions.ForceEnd(targetID) {
		respondEphemeral(s, i, fmt.Sprintf("🔓 Cleared the stuck game session for <@%d>.", targetID))
	} else {
		respondEphemeral(s, i, fmt.Sprintf("ℹ️ <@%d> has no active game session.", targetID))
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	balance := b.wallet.GetBalance(ctx, userID)
	respondEphemeral(s, i, fmt.Sprintf("💰 Your balance: **%s coins**", FormatBalance(balance)))
}

func (b *Bot) handleDonate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	data := i.ApplicationCommandData()

	var recipientRaw string
	var amount int64
	for _, opt := range data.Options {
		switch opt.Name {
		case "user":
			recipientRaw = opt.UserValue(nil).ID
		case "amount":
			amount = opt.IntValue()
		}
	}

	recipientID, err := strconv.ParseInt(recipientRaw, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "❌ Could not resolve that user.")
		return
	}

	if err := b.wallet.Transfer(ctx, userID, recipientID, amount); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondEphemeral(s, i, "❌ Donation amount must be positive.")
		case errors.Is(err, service.ErrInsufficientFunds):
			respondEphemeral(s, i, "❌ You don't have that many coins.")
		default:
			respondEphemeral(s, i, "❌ "+err.Error())
		}
		return
	}

	respond(s, i, fmt.Sprintf("✅ Donated **%s coins** to <@%d>.", FormatBalance(amount), recipientID))
}

func (b *Bot) handleLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries := b.stats.GetScoreboard(10)
	if len(entries) == 0 {
		respond(s, i, "Nobody has any coins yet.")
		return
	}

	summary := b.stats.GetEconomySummary()

	var sb strings.Builder
	sb.WriteString("🏆 **Leaderboard**\n")
	for rank, entry := range entries {
		fmt.Fprintf(&sb, "%d. <@%d> — **%s coins**\n", rank+1, entry.UserID, FormatBalance(entry.Balance))
	}
	fmt.Fprintf(&sb, "\n%d players, **%s coins** in circulation.",
		summary.UserCount, FormatBalance(summary.TotalMoney))

	log.WithField("players", summary.UserCount).Debug("Leaderboard requested")
	respond(s, i, sb.String())
}

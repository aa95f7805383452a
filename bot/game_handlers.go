package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/events"
	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

var slotReel = []string{"🍒", "🍋", "🍇", "💎", "7️⃣"}

// playRound runs the shared game skeleton: acquire the user's session slot,
// resolve the wager, debit it, compute the outcome, credit the payout, and
// release the slot on every exit path. The outcome func returns the payout
// multiplier (0 = lost the wager) and the result line shown to the user.
func (b *Bot) playRound(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, game string, outcome func(wager int64) (payout int64, detail string)) {
	if !b.sessions.StartGame(userID) {
		respondEphemeral(s, i, "🚫 You already have a game in progress. Finish it first.")
		return
	}
	defer b.sessions.EndGame(userID)

	wager := b.resolver.ParseBetAmount(ctx, userID, optionString(i, "bet"))
	if wager.Amount <= 0 {
		respondEphemeral(s, i, "❌ "+wager.Message)
		return
	}

	if _, err := b.wallet.SubtractBalance(ctx, userID, wager.Amount); err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			respondEphemeral(s, i, "❌ You can't afford that bet.")
			return
		}
		log.WithError(err).Error("Debit failed")
		respondEphemeral(s, i, "❌ Something went wrong placing your bet.")
		return
	}

	payout, detail := outcome(wager.Amount)
	won, push := roundResult(wager.Amount, payout)

	var newBalance int64
	if payout > 0 {
		var err error
		if newBalance, err = b.wallet.AddBalance(ctx, userID, payout); err != nil {
			log.WithError(err).Error("Payout credit failed")
		}
	} else {
		newBalance = b.wallet.GetBalance(ctx, userID)
	}
	if !push {
		b.wallet.RecordGameResult(ctx, userID, won)
	}

	b.eventBus.Emit(ctx, events.GamePlayedEvent{
		UserID:     userID,
		Game:       game,
		Wager:      wager.Amount,
		Payout:     payout,
		Won:        won,
		NewBalance: newBalance,
	})

	var result string
	if push {
		result = fmt.Sprintf("🤝 Your bet of **%s coins** is returned. Balance: **%s coins**",
			FormatBalance(wager.Amount), FormatBalance(newBalance))
	} else {
		result = FormatBetResult(won, wager.Amount, payout-wager.Amount, newBalance)
	}
	msg := detail + "\n" + result
	if wager.WasAdjusted {
		msg = "⚠️ " + wager.Message + "\n" + msg
	}
	respond(s, i, msg)
}

// handleFlip is double-or-nothing on a fair coin
func (b *Bot) handleFlip(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	b.playRound(ctx, s, i, userID, "flip", func(wager int64) (int64, string) {
		heads := rand.Intn(2) == 0
		side := "tails"
		if heads {
			side = "heads"
		}
		detail := fmt.Sprintf("🪙 The coin landed on **%s**.", side)
		if heads {
			return wager * 2, detail
		}
		return 0, detail
	})
}

// handleDice rolls the user's die against the house's, higher roll wins 2x,
// a tie pushes the wager back
func (b *Bot) handleDice(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	b.playRound(ctx, s, i, userID, "dice", func(wager int64) (int64, string) {
		yours := rand.Intn(6) + 1
		house := rand.Intn(6) + 1
		detail := fmt.Sprintf("🎲 You rolled **%d**, the house rolled **%d**.", yours, house)
		switch {
		case yours > house:
			return wager * 2, detail
		case yours == house:
			return wager, detail
		default:
			return 0, detail
		}
	})
}

// handleSlots spins three reels: triple sevens pay 10x, any other triple 5x,
// a pair 2x
func (b *Bot) handleSlots(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	b.playRound(ctx, s, i, userID, "slots", func(wager int64) (int64, string) {
		reels := [3]string{
			slotReel[rand.Intn(len(slotReel))],
			slotReel[rand.Intn(len(slotReel))],
			slotReel[rand.Intn(len(slotReel))],
		}
		detail := fmt.Sprintf("🎰 %s | %s | %s", reels[0], reels[1], reels[2])

		switch {
		case reels[0] == reels[1] && reels[1] == reels[2]:
			if reels[0] == "7️⃣" {
				return wager * 10, detail + " **JACKPOT!**"
			}
			return wager * 5, detail
		case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
			return wager * 2, detail
		default:
			return 0, detail
		}
	})
}

// handleDaily grants the claim amount once per cooldown window
func (b *Bot) handleDaily(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	newBalance, wait, err := b.claimDaily(ctx, userID, time.Now())
	if err != nil {
		log.WithError(err).Error("Daily claim credit failed")
		respondEphemeral(s, i, "❌ Could not credit your daily coins.")
		return
	}
	if wait > 0 {
		respondEphemeral(s, i, fmt.Sprintf("⏳ Already claimed. Come back in %s.", wait.Round(time.Minute)))
		return
	}
	respond(s, i, fmt.Sprintf("💰 You claimed **%s coins**! New balance: **%s coins**",
		FormatBalance(b.cfg.Daily.ClaimAmount), FormatBalance(newBalance)))
}

// claimDaily credits the daily claim if the user's cooldown window allows
// it. A non-zero wait means the window is still closed. The claim is only
// consumed once the credit has succeeded, so a failed credit does not cost
// the user their claim.
func (b *Bot) claimDaily(ctx context.Context, userID int64, now time.Time) (int64, time.Duration, error) {
	if b.daily.IsLimited(userID, now) {
		return 0, b.daily.ResetTime(userID, now), nil
	}

	newBalance, err := b.wallet.AddBalance(ctx, userID, b.cfg.Daily.ClaimAmount)
	if err != nil {
		return 0, 0, err
	}
	b.daily.Record(userID, now)
	return newBalance, 0, nil
}

// roundResult classifies a payout against the wager: a payout above the
// wager is a win, a payout equal to the wager is a push (the bet is simply
// returned, neither a win nor a loss), anything else is a loss.
func roundResult(wager, payout int64) (won, push bool) {
	return payout > wager, payout == wager && payout > 0
}

// optionString returns the named string option of the invoked command
func optionString(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

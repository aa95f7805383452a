package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/config"
	"coinbank/events"
	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	cfg      *config.Config
	session  *discordgo.Session
	wallet   service.WalletService
	resolver *service.BetResolver
	sessions *service.SessionService
	limiter  *service.RateLimiter
	daily    *service.RateLimiter // one claim per cooldown window
	stats    service.StatsService
	watcher  *service.FileWatcher
	eventBus *events.Bus
}

func New(cfg *config.Config, wallet service.WalletService, resolver *service.BetResolver, sessions *service.SessionService, limiter *service.RateLimiter, stats service.StatsService, watcher *service.FileWatcher, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		cfg:      cfg,
		session:  dg,
		wallet:   wallet,
		resolver: resolver,
		sessions: sessions,
		limiter:  limiter,
		daily:    service.NewRateLimiter(time.Duration(cfg.Daily.CooldownHours)*time.Hour, 1),
		stats:    stats,
		watcher:  watcher,
		eventBus: eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	userID, err := interactionUserID(i)
	if err != nil {
		log.WithError(err).Error("Could not resolve interaction user")
		return
	}

	name := i.ApplicationCommandData().Name
	if limited, retry := b.checkRateLimit(userID); limited {
		respondEphemeral(s, i, fmt.Sprintf("⏳ Slow down! Try again in %d seconds.", int(retry.Seconds())+1))
		return
	}

	ctx := context.Background()
	switch name {
	case "balance":
		b.handleBalance(ctx, s, i, userID)
	case "flip":
		b.handleFlip(ctx, s, i, userID)
	case "dice":
		b.handleDice(ctx, s, i, userID)
	case "slots":
		b.handleSlots(ctx, s, i, userID)
	case "daily":
		b.handleDaily(ctx, s, i, userID)
	case "donate":
		b.handleDonate(ctx, s, i, userID)
	case "leaderboard":
		b.handleLeaderboard(ctx, s, i)
	case "admin":
		b.handleAdmin(ctx, s, i, userID)
	}
}

// checkRateLimit records the command hit and reports whether the user is
// throttled. Configured administrative identities bypass the limiter
// entirely.
func (b *Bot) checkRateLimit(userID int64) (bool, time.Duration) {
	if b.cfg.IsAdmin(userID) {
		return false, 0
	}
	now := time.Now()
	if b.limiter.IsLimited(userID, now) {
		return true, b.limiter.ResetTime(userID, now)
	}
	b.limiter.Record(userID, now)
	return false, 0
}

// interactionUserID extracts the invoking user's ID from either a guild or
// a DM interaction.
func interactionUserID(i *discordgo.InteractionCreate) (int64, error) {
	var raw string
	switch {
	case i.Member != nil && i.Member.User != nil:
		raw = i.Member.User.ID
	case i.User != nil:
		raw = i.User.ID
	default:
		return 0, fmt.Errorf("interaction has no user")
	}
	return strconv.ParseInt(raw, 10, 64)
}

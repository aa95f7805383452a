package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinbank/config"
	"coinbank/events"
	"coinbank/repository"
	"coinbank/service"
)

func TestRoundResult(t *testing.T) {
	tests := []struct {
		name   string
		wager  int64
		payout int64
		won    bool
		push   bool
	}{
		{"double payout wins", 100, 200, true, false},
		{"jackpot wins", 100, 1000, true, false},
		{"returned bet is a push", 100, 100, false, true},
		{"zero payout loses", 100, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			won, push := roundResult(tt.wager, tt.payout)
			assert.Equal(t, tt.won, won)
			assert.Equal(t, tt.push, push)
		})
	}
}

func newClaimBot(t *testing.T) (*Bot, service.WalletService) {
	t.Helper()

	repo, err := repository.NewLedgerRepository(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	wallet, err := service.NewWalletService(repo, events.NewBus(), 0, false, false)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Daily.ClaimAmount = 250

	return &Bot{
		cfg:    cfg,
		wallet: wallet,
		daily:  service.NewRateLimiter(22*time.Hour, 1),
	}, wallet
}

func TestClaimDaily_OncePerWindow(t *testing.T) {
	ctx := context.Background()
	bot, _ := newClaimBot(t)
	now := time.Now()

	newBalance, wait, err := bot.claimDaily(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)
	assert.Equal(t, int64(250), newBalance)

	// Second claim inside the window is refused with the remaining wait
	_, wait, err = bot.claimDaily(ctx, 1, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 21*time.Hour, wait)

	// The window eventually reopens
	newBalance, wait, err = bot.claimDaily(ctx, 1, now.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)
	assert.Equal(t, int64(500), newBalance)
}

func TestClaimDaily_FailedCreditDoesNotConsumeClaim(t *testing.T) {
	ctx := context.Background()
	bot, wallet := newClaimBot(t)
	now := time.Now()

	// A zero claim amount makes the credit fail
	bot.cfg.Daily.ClaimAmount = 0
	_, _, err := bot.claimDaily(ctx, 1, now)
	require.Error(t, err)

	// The failed attempt must not have burned the user's claim
	bot.cfg.Daily.ClaimAmount = 250
	newBalance, wait, err := bot.claimDaily(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)
	assert.Equal(t, int64(250), newBalance)
	assert.Equal(t, int64(250), wallet.GetBalance(ctx, 1))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetResolver_ParseBetAmount_UsesCurrentBalance(t *testing.T) {
	ctx := context.Background()
	wallet, _ := newTestWallet(t, 500, false)
	resolver := NewBetResolver(wallet)

	wager := resolver.ParseBetAmount(ctx, 1, "all")
	assert.Equal(t, int64(500), wager.Amount)

	wager = resolver.ParseBetAmount(ctx, 1, "9999")
	assert.Equal(t, int64(500), wager.Amount)
	assert.True(t, wager.WasAdjusted)
}

func TestResolveWager_All(t *testing.T) {
	wager := ResolveWager("all", 500)
	assert.Equal(t, int64(500), wager.Amount)
	assert.False(t, wager.WasAdjusted)
}

func TestResolveWager_AllOnZeroBalance(t *testing.T) {
	wager := ResolveWager("all", 0)
	assert.Equal(t, int64(0), wager.Amount)
	assert.False(t, wager.WasAdjusted)
	assert.NotEmpty(t, wager.Message)
}

func TestResolveWager_OverBalanceAdjustsDown(t *testing.T) {
	wager := ResolveWager("10000", 300)
	assert.Equal(t, int64(300), wager.Amount)
	assert.True(t, wager.WasAdjusted)
	assert.NotEmpty(t, wager.Message)
}

func TestResolveWager_LiteralWithinBalance(t *testing.T) {
	wager := ResolveWager("250", 300)
	assert.Equal(t, int64(250), wager.Amount)
	assert.False(t, wager.WasAdjusted)
}

func TestResolveWager_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		balance int64
	}{
		{"garbage", "banana", 500},
		{"empty", "", 500},
		{"zero", "0", 500},
		{"negative", "-50", 500},
		{"negative shorthand", "-2k", 500},
		{"decimal without suffix", "1.5", 500},
		{"over balance with zero balance", "100", 0},
		{"bare suffix", "k", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wager := ResolveWager(tt.raw, tt.balance)
			assert.Equal(t, int64(0), wager.Amount)
			assert.False(t, wager.WasAdjusted)
			assert.NotEmpty(t, wager.Message)
		})
	}
}

func TestResolveWager_ShorthandSuffixes(t *testing.T) {
	tests := []struct {
		raw      string
		balance  int64
		amount   int64
		adjusted bool
	}{
		{"2k", 5000, 2000, false},
		{"1.5k", 5000, 1500, false},
		{"1m", 2_000_000, 1_000_000, false},
		{"1b", 2_000_000_000, 1_000_000_000, false},
		{"2K", 5000, 2000, false},         // case-insensitive
		{"10k", 5000, 5000, true},         // adjusted down
		{"999999b", 1000, 1000, true},     // saturates, then adjusted
		{" 2k ", 5000, 2000, false},       // surrounding whitespace
		{"ALL", 700, 700, false},          // "all" is case-insensitive too
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			wager := ResolveWager(tt.raw, tt.balance)
			assert.Equal(t, tt.amount, wager.Amount)
			assert.Equal(t, tt.adjusted, wager.WasAdjusted)
		})
	}
}

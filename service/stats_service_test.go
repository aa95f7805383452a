package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_GetScoreboard(t *testing.T) {
	ctx := context.Background()
	wallet, _ := newTestWallet(t, 0, true)
	stats := NewStatsService(wallet)

	require.NoError(t, wallet.SetBalance(ctx, 1, 300))
	require.NoError(t, wallet.SetBalance(ctx, 2, 900))
	require.NoError(t, wallet.SetBalance(ctx, 3, 600))
	require.NoError(t, wallet.SetBalance(ctx, 4, 0)) // broke, excluded

	top := stats.GetScoreboard(2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(900), top[0].Balance)
	assert.Equal(t, int64(3), top[1].UserID)

	all := stats.GetScoreboard(0)
	assert.Len(t, all, 3)

	empty, _ := newTestWallet(t, 0, true)
	assert.Empty(t, NewStatsService(empty).GetScoreboard(10))
}

func TestStatsService_GetEconomySummary(t *testing.T) {
	ctx := context.Background()
	wallet, _ := newTestWallet(t, 0, true)
	stats := NewStatsService(wallet)

	require.NoError(t, wallet.SetBalance(ctx, 1, 250))
	require.NoError(t, wallet.SetBalance(ctx, 2, 750))

	summary := stats.GetEconomySummary()
	assert.Equal(t, 2, summary.UserCount)
	assert.Equal(t, int64(1000), summary.TotalMoney)
}

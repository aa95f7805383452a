package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinbank/events"
	"coinbank/repository"
)

func newWatchedWallet(t *testing.T) (WalletService, *FileWatcher, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.json")
	repo, err := repository.NewLedgerRepository(path)
	require.NoError(t, err)

	wallet, err := NewWalletService(repo, events.NewBus(), 0, false, false)
	require.NoError(t, err)

	watcher := NewFileWatcher(repo, wallet)
	t.Cleanup(func() { _ = watcher.Stop() })
	return wallet, watcher, path
}

func TestFileWatcher_StartStopStates(t *testing.T) {
	_, watcher, _ := newWatchedWallet(t)

	assert.False(t, watcher.Running())
	assert.ErrorIs(t, watcher.Stop(), ErrNotRunning)

	require.NoError(t, watcher.Start(50*time.Millisecond))
	assert.True(t, watcher.Running())
	assert.Equal(t, 50*time.Millisecond, watcher.Interval())
	assert.ErrorIs(t, watcher.Start(50*time.Millisecond), ErrAlreadyRunning)

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.Running())
	assert.Equal(t, time.Duration(0), watcher.Interval())
	assert.ErrorIs(t, watcher.Stop(), ErrNotRunning)

	// Restartable after a stop
	require.NoError(t, watcher.Start(50*time.Millisecond))
	require.NoError(t, watcher.Stop())
}

func TestFileWatcher_DetectsExternalOverwrite(t *testing.T) {
	ctx := context.Background()
	wallet, watcher, path := newWatchedWallet(t)

	require.NoError(t, wallet.SetBalance(ctx, 1, 100))
	require.NoError(t, wallet.Flush())

	require.NoError(t, watcher.Start(10*time.Millisecond))

	// Simulate a restore script replacing the ledger out-of-band
	external := `{"accounts":{"1":{"balance":9000},"2":{"balance":50}}}`
	require.NoError(t, os.WriteFile(path, []byte(external), 0o644))

	assert.Eventually(t, func() bool {
		return wallet.GetBalance(ctx, 1) == 9000
	}, 2*time.Second, 5*time.Millisecond, "watcher should apply the external overwrite")
	assert.Equal(t, int64(50), wallet.GetBalance(ctx, 2))

	// A credit committed after the reload survives alongside the new values
	newBalance, err := wallet.AddBalance(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(9500), newBalance)
}

func TestFileWatcher_IgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	wallet, watcher, _ := newWatchedWallet(t)

	require.NoError(t, wallet.SetBalance(ctx, 1, 100))
	require.NoError(t, wallet.Flush())

	require.NoError(t, watcher.Start(10*time.Millisecond))

	// Mutate and flush repeatedly; none of these self-writes may trigger a
	// reload that would discard the unflushed state between iterations.
	for i := 0; i < 5; i++ {
		_, err := wallet.AddBalance(ctx, 1, 10)
		require.NoError(t, err)
		require.NoError(t, wallet.Flush())
		time.Sleep(15 * time.Millisecond)
	}

	assert.Equal(t, int64(150), wallet.GetBalance(ctx, 1))
}

func TestFileWatcher_StopDuringPollIsClean(t *testing.T) {
	_, watcher, _ := newWatchedWallet(t)

	require.NoError(t, watcher.Start(time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- watcher.Stop() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

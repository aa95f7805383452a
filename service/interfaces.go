package service

import (
	"context"

	"coinbank/events"
	"coinbank/models"
)

// LedgerRepository defines the interface for durable ledger storage
type LedgerRepository interface {
	// Load reads the full account map from disk
	Load() (map[int64]*models.Account, error)

	// Save writes the full account map atomically
	Save(accounts map[int64]*models.Account) error

	// Modified reports whether the file changed since the last load/save
	Modified() (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// WalletService is the single legal path to read and mutate balances.
// All methods are safe to call concurrently from independent goroutines.
type WalletService interface {
	// GetBalance returns the user's balance, creating the account with the
	// starting balance if it doesn't exist. Never fails.
	GetBalance(ctx context.Context, userID int64) int64

	// AddBalance atomically credits the user and returns the new balance
	AddBalance(ctx context.Context, userID int64, amount int64) (int64, error)

	// SubtractBalance atomically debits the user and returns the new balance.
	// This is the only path that can reduce a balance; it never leaves the
	// account negative.
	SubtractBalance(ctx context.Context, userID int64, amount int64) (int64, error)

	// SetBalance overwrites a user's balance unconditionally (administrative)
	SetBalance(ctx context.Context, userID int64, amount int64) error

	// Transfer moves amount from one user to another atomically
	Transfer(ctx context.Context, fromID, toID int64, amount int64) error

	// RecordGameResult updates the user's coarse per-game statistics
	RecordGameResult(ctx context.Context, userID int64, won bool)

	// ReloadData discards in-memory state and reloads from the repository
	ReloadData(ctx context.Context) (models.ReloadReport, error)

	// Flush persists the current in-memory state, retrying on failure
	Flush() error

	// FlushIfDirty persists only if there are unsaved changes
	FlushIfDirty() error

	// Aggregate queries
	GetTotalMoneyInSystem() int64
	GetUserCount() int
	GetAllUsersWithMoney() []models.AccountEntry
	AllUserIDs() []int64
}

// StatsService defines the interface for economy statistics
type StatsService interface {
	// GetScoreboard returns the top users by balance, descending
	GetScoreboard(limit int) []models.AccountEntry

	// GetEconomySummary returns the user count and total money in the system
	GetEconomySummary() models.EconomySummary
}

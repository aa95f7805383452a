package models

// Account represents a single user's entry in the ledger
type Account struct {
	UserID      int64 `json:"-"`
	Balance     int64 `json:"balance"`
	GamesPlayed int64 `json:"games_played"`
	GamesWon    int64 `json:"games_won"`
}

// Clone returns an independent copy of the account
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// AccountEntry is a read-only (user, balance) pair used by leaderboards
type AccountEntry struct {
	UserID  int64
	Balance int64
}

// EconomySummary holds coarse aggregate statistics over all accounts
type EconomySummary struct {
	UserCount  int
	TotalMoney int64
}

// ReloadReport summarizes the aggregate effect of replacing the in-memory
// ledger with the on-disk snapshot
type ReloadReport struct {
	OldCount int
	NewCount int
	OldTotal int64
	NewTotal int64
}

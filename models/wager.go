package models

import "time"

// PendingWager is the result of resolving a raw wager expression against a
// user's current balance. Amount <= 0 means the caller must not proceed;
// Message carries the user-facing explanation either way.
type PendingWager struct {
	Amount      int64
	WasAdjusted bool
	Message     string
}

// GameOutcome records one finished game round for observability
type GameOutcome struct {
	UserID   int64
	Game     string
	Wager    int64
	Payout   int64
	Won      bool
	Balance  int64
	PlayedAt time.Time
}

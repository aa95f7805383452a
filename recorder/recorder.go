package recorder

import "coinbank/models"

// ReloadEvent records one ledger reload triggered by an external file change.
type ReloadEvent struct {
	OldCount int
	NewCount int
	OldTotal int64
	NewTotal int64
}

// Recorder persists game history for out-of-band analysis. It is pure
// observability: the ledger file stays the only authoritative store, and a
// recorder failure never fails the game that triggered it.
type Recorder interface {
	RecordGame(outcome *models.GameOutcome) error
	RecordReload(evt *ReloadEvent) error
	Close() error
}

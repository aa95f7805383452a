package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"coinbank/models"
)

// SQLiteRecorder persists game history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external analysis tools can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("SQLite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game_rounds (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			user_id    INTEGER NOT NULL,
			game       TEXT NOT NULL,
			wager      INTEGER NOT NULL,
			payout     INTEGER NOT NULL,
			won        INTEGER NOT NULL,
			balance    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_user ON game_rounds(user_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS ledger_reloads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			old_count  INTEGER,
			new_count  INTEGER,
			old_total  INTEGER,
			new_total  INTEGER
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordGame stores one finished game round.
func (r *SQLiteRecorder) RecordGame(outcome *models.GameOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	playedAt := outcome.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO game_rounds (timestamp, user_id, game, wager, payout, won, balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playedAt.Unix(), outcome.UserID, outcome.Game, outcome.Wager,
		outcome.Payout, boolToInt(outcome.Won), outcome.Balance,
	)
	if err != nil {
		return fmt.Errorf("insert game round: %w", err)
	}
	return nil
}

// RecordReload stores one externally triggered ledger reload.
func (r *SQLiteRecorder) RecordReload(evt *ReloadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO ledger_reloads (timestamp, old_count, new_count, old_total, new_total)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), evt.OldCount, evt.NewCount, evt.OldTotal, evt.NewTotal,
	)
	if err != nil {
		return fmt.Errorf("insert ledger reload: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

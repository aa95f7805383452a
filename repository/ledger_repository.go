package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/models"
)

// ErrCorruptLedger is returned when the ledger file exists but cannot be parsed.
var ErrCorruptLedger = errors.New("ledger file is corrupt")

// LedgerMarker identifies a version of the ledger file on disk. Two markers
// compare equal only if the file has not been replaced since the marker was
// taken.
type LedgerMarker struct {
	ModTime time.Time
	Size    int64
}

// ledgerFile is the on-disk representation: a single JSON object keyed by
// decimal user ID strings so the file stays editable by hand and by
// external backup/restore tooling.
type ledgerFile struct {
	Accounts map[string]*models.Account `json:"accounts"`
}

// LedgerRepository persists the account map to a single JSON file.
// Saves are atomic: the snapshot is written to a .tmp file and renamed over
// the target, so a crash mid-write never leaves a half-written file visible.
// All file operations are mutex-protected.
type LedgerRepository struct {
	path string

	mu     sync.Mutex
	marker LedgerMarker // file version recorded at the last load/save
}

// NewLedgerRepository creates a repository backed by the given file path.
func NewLedgerRepository(path string) (*LedgerRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	return &LedgerRepository{path: path}, nil
}

// Path returns the ledger file location.
func (r *LedgerRepository) Path() string {
	return r.path
}

// Load reads the full account map from disk. A missing file is not an
// error: it returns an empty map so a first run starts fresh. Unparsable
// content returns ErrCorruptLedger; the caller decides the recovery policy.
func (r *LedgerRepository) Load() (map[int64]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.marker = LedgerMarker{}
			return make(map[int64]*models.Account), nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}

	accounts := make(map[int64]*models.Account, len(file.Accounts))
	for key, acct := range file.Accounts {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id %q", ErrCorruptLedger, key)
		}
		if acct.Balance < 0 {
			return nil, fmt.Errorf("%w: negative balance for user %d", ErrCorruptLedger, userID)
		}
		acct.UserID = userID
		accounts[userID] = acct
	}

	if err := r.refreshMarkerLocked(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":     r.path,
		"accounts": len(accounts),
	}).Debug("Ledger file loaded")

	return accounts, nil
}

// Save writes the full snapshot atomically and records the resulting file
// marker, so the file watcher never mistakes our own write for an external
// modification.
func (r *LedgerRepository) Save(accounts map[int64]*models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file := ledgerFile{Accounts: make(map[string]*models.Account, len(accounts))}
	for userID, acct := range accounts {
		file.Accounts[strconv.FormatInt(userID, 10)] = acct
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	if err := r.refreshMarkerLocked(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":     r.path,
		"accounts": len(accounts),
	}).Debug("Ledger file saved")

	return nil
}

// Modified reports whether the ledger file on disk differs from the version
// recorded at the last load/save. A missing file counts as unmodified.
func (r *LedgerRepository) Modified() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat ledger file: %w", err)
	}

	current := LedgerMarker{ModTime: info.ModTime(), Size: info.Size()}
	return current != r.marker, nil
}

func (r *LedgerRepository) refreshMarkerLocked() error {
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.marker = LedgerMarker{}
			return nil
		}
		return fmt.Errorf("stat ledger file: %w", err)
	}
	r.marker = LedgerMarker{ModTime: info.ModTime(), Size: info.Size()}
	return nil
}

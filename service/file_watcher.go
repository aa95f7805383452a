package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// FileWatcher polls the ledger file for modifications made outside this
// process (manual edits, a restore script) and triggers a reload of the
// wallet service when it sees one. It never reacts to the process's own
// writes: the repository records its marker synchronously on every save,
// so a self-write never shows up as a modification.
type FileWatcher struct {
	repo   LedgerRepository
	wallet WalletService

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
}

// NewFileWatcher creates a stopped file watcher
func NewFileWatcher(repo LedgerRepository, wallet WalletService) *FileWatcher {
	return &FileWatcher{repo: repo, wallet: wallet}
}

// Start begins polling at the given interval. Starting an already running
// watcher is a no-op reported as ErrAlreadyRunning.
func (w *FileWatcher) Start(interval time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.interval = interval
	go w.loop(ctx, interval, w.done)

	log.WithField("interval", interval).Info("File watcher started")
	return nil
}

// Stop cancels the poll loop and waits for it to exit. Safe to call at any
// point in the poll cycle: an in-progress reload always completes before
// the loop returns. Stopping a stopped watcher is a no-op reported as
// ErrNotRunning.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return ErrNotRunning
	}

	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil

	log.Info("File watcher stopped")
	return nil
}

// Running reports whether the poll loop is active
func (w *FileWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Interval returns the configured poll interval, zero when stopped
func (w *FileWatcher) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return 0
	}
	return w.interval
}

func (w *FileWatcher) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Cancellation is checked at the top of every iteration so Stop
		// never waits longer than one in-flight tick.
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *FileWatcher) tick(ctx context.Context) {
	modified, err := w.repo.Modified()
	if err != nil {
		log.WithError(err).Warn("File watcher could not stat ledger file")
		return
	}
	if !modified {
		return
	}

	log.Info("Ledger file changed externally, reloading")
	report, err := w.wallet.ReloadData(ctx)
	if err != nil {
		// Marker stays stale, so the next tick retries the reload.
		log.WithError(err).Error("Reload after external change failed")
		return
	}

	log.WithFields(log.Fields{
		"oldCount": report.OldCount,
		"newCount": report.NewCount,
		"oldTotal": report.OldTotal,
		"newTotal": report.NewTotal,
	}).Info("External ledger change applied")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/events"
	"coinbank/models"
	"coinbank/repository"
)

// Balance change reasons attached to BalanceChangeEvent
const (
	ReasonInitial     = "initial"
	ReasonCredit      = "credit"
	ReasonDebit       = "debit"
	ReasonSet         = "set"
	ReasonTransferIn  = "transfer_in"
	ReasonTransferOut = "transfer_out"
)

const (
	saveAttempts = 3
	saveBackoff  = 100 * time.Millisecond
)

// walletService implements the WalletService interface.
//
// Locking is two-tiered: storeMu is held shared by every per-account
// operation and exclusively by ReloadData, so a reload never observes a
// torn snapshot. Within the shared section each account is guarded by its
// own mutex, so unrelated users never block each other. Balance fields are
// additionally read/written via sync/atomic so aggregate queries can scan
// without taking every user lock.
type walletService struct {
	repo LedgerRepository
	bus  EventPublisher

	startingBalance int64
	writeThrough    bool

	storeMu  sync.RWMutex
	tableMu  sync.Mutex // guards the structure of the two maps below
	accounts map[int64]*models.Account
	locks    map[int64]*sync.Mutex

	dirty atomic.Bool
}

// NewWalletService loads the ledger from the repository and returns the
// authoritative balance store. A corrupt ledger file is fatal unless
// initializeFresh is set: silently starting from an empty state would wipe
// real balances on the next save.
func NewWalletService(repo LedgerRepository, bus EventPublisher, startingBalance int64, writeThrough, initializeFresh bool) (WalletService, error) {
	accounts, err := repo.Load()
	if err != nil {
		if errors.Is(err, repository.ErrCorruptLedger) && initializeFresh {
			log.WithError(err).Warn("Ledger file is corrupt, starting fresh as requested")
			accounts = make(map[int64]*models.Account)
		} else {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"accounts":     len(accounts),
		"writeThrough": writeThrough,
	}).Info("Wallet service initialized")

	return &walletService{
		repo:            repo,
		bus:             bus,
		startingBalance: startingBalance,
		writeThrough:    writeThrough,
		accounts:        accounts,
		locks:           make(map[int64]*sync.Mutex),
	}, nil
}

// fetch returns the account and its lock, creating both if the user has
// never been seen. Callers must hold storeMu (shared).
func (s *walletService) fetch(ctx context.Context, userID int64) (*models.Account, *sync.Mutex) {
	s.tableMu.Lock()
	acct, ok := s.accounts[userID]
	if !ok {
		acct = &models.Account{UserID: userID, Balance: s.startingBalance}
		s.accounts[userID] = acct
	}
	lock, okLock := s.locks[userID]
	if !okLock {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.tableMu.Unlock()

	if !ok {
		s.dirty.Store(true)
		s.bus.Emit(ctx, events.UserCreatedEvent{
			UserID:         userID,
			InitialBalance: s.startingBalance,
		})
	}
	return acct, lock
}

// GetBalance returns the user's balance, creating the account with the
// starting balance if absent
func (s *walletService) GetBalance(ctx context.Context, userID int64) int64 {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()

	acct, _ := s.fetch(ctx, userID)
	return atomic.LoadInt64(&acct.Balance)
}

// AddBalance atomically credits the user and returns the new balance
func (s *walletService) AddBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	s.storeMu.RLock()
	acct, lock := s.fetch(ctx, userID)
	lock.Lock()
	oldBalance := atomic.LoadInt64(&acct.Balance)
	newBalance := oldBalance + amount
	atomic.StoreInt64(&acct.Balance, newBalance)
	lock.Unlock()
	s.storeMu.RUnlock()

	s.publishChange(ctx, userID, oldBalance, newBalance, ReasonCredit)
	s.persistAfterMutation()
	return newBalance, nil
}

// SubtractBalance atomically debits the user and returns the new balance.
// Fails with ErrInsufficientFunds if the debit exceeds the balance; the
// account can never go negative, even under concurrent calls.
func (s *walletService) SubtractBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	s.storeMu.RLock()
	acct, lock := s.fetch(ctx, userID)
	lock.Lock()
	oldBalance := atomic.LoadInt64(&acct.Balance)
	if amount > oldBalance {
		lock.Unlock()
		s.storeMu.RUnlock()
		return 0, ErrInsufficientFunds
	}
	newBalance := oldBalance - amount
	atomic.StoreInt64(&acct.Balance, newBalance)
	lock.Unlock()
	s.storeMu.RUnlock()

	s.publishChange(ctx, userID, oldBalance, newBalance, ReasonDebit)
	s.persistAfterMutation()
	return newBalance, nil
}

// SetBalance overwrites a user's balance unconditionally (administrative)
func (s *walletService) SetBalance(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	s.storeMu.RLock()
	acct, lock := s.fetch(ctx, userID)
	lock.Lock()
	oldBalance := atomic.LoadInt64(&acct.Balance)
	atomic.StoreInt64(&acct.Balance, amount)
	lock.Unlock()
	s.storeMu.RUnlock()

	s.publishChange(ctx, userID, oldBalance, amount, ReasonSet)
	s.persistAfterMutation()
	return nil
}

// Transfer moves amount from one user to another. Both user locks are
// acquired in ID order so two opposing transfers cannot deadlock.
func (s *walletService) Transfer(ctx context.Context, fromID, toID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return fmt.Errorf("cannot transfer to yourself")
	}

	s.storeMu.RLock()
	fromAcct, fromLock := s.fetch(ctx, fromID)
	toAcct, toLock := s.fetch(ctx, toID)

	first, second := fromLock, toLock
	if toID < fromID {
		first, second = toLock, fromLock
	}
	first.Lock()
	second.Lock()

	oldFrom := atomic.LoadInt64(&fromAcct.Balance)
	if amount > oldFrom {
		second.Unlock()
		first.Unlock()
		s.storeMu.RUnlock()
		return ErrInsufficientFunds
	}
	oldTo := atomic.LoadInt64(&toAcct.Balance)
	atomic.StoreInt64(&fromAcct.Balance, oldFrom-amount)
	atomic.StoreInt64(&toAcct.Balance, oldTo+amount)

	second.Unlock()
	first.Unlock()
	s.storeMu.RUnlock()

	s.publishChange(ctx, fromID, oldFrom, oldFrom-amount, ReasonTransferOut)
	s.publishChange(ctx, toID, oldTo, oldTo+amount, ReasonTransferIn)
	s.persistAfterMutation()
	return nil
}

// RecordGameResult updates the user's coarse per-game statistics
func (s *walletService) RecordGameResult(ctx context.Context, userID int64, won bool) {
	s.storeMu.RLock()
	acct, _ := s.fetch(ctx, userID)
	atomic.AddInt64(&acct.GamesPlayed, 1)
	if won {
		atomic.AddInt64(&acct.GamesWon, 1)
	}
	s.storeMu.RUnlock()

	s.persistAfterMutation()
}

// ReloadData discards in-memory state and reloads from the repository.
// It holds the store-wide exclusive lock for the duration, so no account
// operation can interleave with the swap. On load failure the old state is
// kept and remains authoritative.
func (s *walletService) ReloadData(ctx context.Context) (models.ReloadReport, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	report := models.ReloadReport{OldCount: len(s.accounts)}
	for _, acct := range s.accounts {
		report.OldTotal += acct.Balance
	}

	loaded, err := s.repo.Load()
	if err != nil {
		return report, fmt.Errorf("reload ledger: %w", err)
	}

	report.NewCount = len(loaded)
	for _, acct := range loaded {
		report.NewTotal += acct.Balance
	}

	// No account lock can be held here, so the maps can be swapped outright.
	s.accounts = loaded
	s.locks = make(map[int64]*sync.Mutex)
	s.dirty.Store(false)

	log.WithFields(log.Fields{
		"oldCount": report.OldCount,
		"oldTotal": report.OldTotal,
		"newCount": report.NewCount,
		"newTotal": report.NewTotal,
	}).Info("Ledger reloaded from disk")

	s.bus.Emit(ctx, events.LedgerReloadedEvent{
		OldCount: report.OldCount,
		NewCount: report.NewCount,
		OldTotal: report.OldTotal,
		NewTotal: report.NewTotal,
	})
	return report, nil
}

// Flush persists the current in-memory state, retrying with backoff.
// The in-memory store stays authoritative if every attempt fails.
func (s *walletService) Flush() error {
	s.dirty.Store(false)
	snapshot := s.snapshot()

	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		if err = s.repo.Save(snapshot); err == nil {
			return nil
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Ledger save failed")
		if attempt < saveAttempts {
			time.Sleep(saveBackoff * time.Duration(attempt))
		}
	}

	s.dirty.Store(true)
	return fmt.Errorf("flush ledger: %w", err)
}

// FlushIfDirty persists only if there are unsaved changes
func (s *walletService) FlushIfDirty() error {
	if !s.dirty.Load() {
		return nil
	}
	return s.Flush()
}

// GetTotalMoneyInSystem returns the sum of all balances
func (s *walletService) GetTotalMoneyInSystem() int64 {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	var total int64
	for _, acct := range s.accounts {
		total += atomic.LoadInt64(&acct.Balance)
	}
	return total
}

// GetUserCount returns the number of known accounts
func (s *walletService) GetUserCount() int {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	return len(s.accounts)
}

// GetAllUsersWithMoney returns every account with a positive balance,
// ordered by balance descending (ties broken by user ID for stable output)
func (s *walletService) GetAllUsersWithMoney() []models.AccountEntry {
	s.storeMu.RLock()
	s.tableMu.Lock()
	entries := make([]models.AccountEntry, 0, len(s.accounts))
	for userID, acct := range s.accounts {
		if balance := atomic.LoadInt64(&acct.Balance); balance > 0 {
			entries = append(entries, models.AccountEntry{UserID: userID, Balance: balance})
		}
	}
	s.tableMu.Unlock()
	s.storeMu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}

// AllUserIDs returns the IDs of every known account
func (s *walletService) AllUserIDs() []int64 {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	ids := make([]int64, 0, len(s.accounts))
	for userID := range s.accounts {
		ids = append(ids, userID)
	}
	return ids
}

// snapshot returns a deep copy of the account map safe to hand to the
// repository without holding any lock during the file write
func (s *walletService) snapshot() map[int64]*models.Account {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	out := make(map[int64]*models.Account, len(s.accounts))
	for userID, acct := range s.accounts {
		out[userID] = &models.Account{
			UserID:      userID,
			Balance:     atomic.LoadInt64(&acct.Balance),
			GamesPlayed: atomic.LoadInt64(&acct.GamesPlayed),
			GamesWon:    atomic.LoadInt64(&acct.GamesWon),
		}
	}
	return out
}

func (s *walletService) publishChange(ctx context.Context, userID, oldBalance, newBalance int64, reason string) {
	s.bus.Emit(ctx, events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   oldBalance,
		NewBalance:   newBalance,
		ChangeAmount: newBalance - oldBalance,
		Reason:       reason,
	})
}

// persistAfterMutation marks the store dirty and, under the write-through
// policy, flushes immediately. Save failures are logged, never propagated:
// the in-memory state stays authoritative and the dirty flag guarantees a
// later flush retries the write.
func (s *walletService) persistAfterMutation() {
	s.dirty.Store(true)
	if !s.writeThrough {
		return
	}
	if err := s.Flush(); err != nil {
		log.WithError(err).Warn("Write-through flush failed, ledger kept in memory")
	}
}

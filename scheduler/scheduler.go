package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"coinbank/service"
)

// Scheduler runs the periodic background jobs: draining the dirty ledger to
// disk under the batched flush policy, and crediting the daily bonus.
type Scheduler struct {
	cron   *cron.Cron
	wallet service.WalletService
	ctx    context.Context
}

// New creates a new Scheduler.
func New(ctx context.Context, wallet service.WalletService) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		wallet: wallet,
		ctx:    ctx,
	}
}

// RegisterFlush registers the periodic dirty-flush job. Only needed under
// the batched policy; write-through persists on every mutation.
func (s *Scheduler) RegisterFlush(cronExpr string) error {
	if _, err := s.cron.AddFunc(cronExpr, s.flushTask); err != nil {
		return fmt.Errorf("register flush task: %w", err)
	}
	return nil
}

// RegisterDailyBonus registers the daily bonus credit for every known account.
func (s *Scheduler) RegisterDailyBonus(cronExpr string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("daily bonus amount must be positive")
	}
	if _, err := s.cron.AddFunc(cronExpr, func() { s.dailyBonusTask(amount) }); err != nil {
		return fmt.Errorf("register daily bonus task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("Scheduler started")
}

// Stop stops the cron scheduler gracefully, waiting for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) flushTask() {
	if err := s.wallet.FlushIfDirty(); err != nil {
		log.WithError(err).Warn("Periodic ledger flush failed")
	}
}

func (s *Scheduler) dailyBonusTask(amount int64) {
	users := s.wallet.AllUserIDs()
	credited := 0
	for _, userID := range users {
		if _, err := s.wallet.AddBalance(s.ctx, userID, amount); err != nil {
			log.WithError(err).WithField("userID", userID).Warn("Daily bonus credit failed")
			continue
		}
		credited++
	}
	log.WithFields(log.Fields{
		"users":  credited,
		"amount": amount,
	}).Info("Daily bonus credited")
}

package service

import (
	"coinbank/models"
)

// statsService implements the StatsService interface on top of the wallet's
// aggregate queries
type statsService struct {
	wallet WalletService
}

// NewStatsService creates a new stats service
func NewStatsService(wallet WalletService) StatsService {
	return &statsService{wallet: wallet}
}

// GetScoreboard returns the top users by balance, descending. A limit of
// zero or less returns everyone.
func (s *statsService) GetScoreboard(limit int) []models.AccountEntry {
	entries := s.wallet.GetAllUsersWithMoney()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// GetEconomySummary returns the user count and total money in the system
func (s *statsService) GetEconomySummary() models.EconomySummary {
	return models.EconomySummary{
		UserCount:  s.wallet.GetUserCount(),
		TotalMoney: s.wallet.GetTotalMoneyInSystem(),
	}
}

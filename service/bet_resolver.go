package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"coinbank/models"
)

// BetResolver turns a raw wager expression into a validated, affordable
// amount against the caller's current balance
type BetResolver struct {
	wallet WalletService
}

// NewBetResolver creates a new bet resolver
func NewBetResolver(wallet WalletService) *BetResolver {
	return &BetResolver{wallet: wallet}
}

// ParseBetAmount resolves a raw wager expression for a user. An Amount of
// zero or less means the bet must not proceed; Message explains why.
func (r *BetResolver) ParseBetAmount(ctx context.Context, userID int64, raw string) models.PendingWager {
	return ResolveWager(raw, r.wallet.GetBalance(ctx, userID))
}

// ResolveWager resolves a raw wager expression against a known balance.
// Accepted forms: a positive integer literal, "all" for the entire balance,
// or a number with a k/m/b suffix ("2k", "1.5m"). A literal larger than the
// balance is not rejected: it is adjusted down to the full balance so a bet
// placed against a stale balance still goes through.
func ResolveWager(raw string, balance int64) models.PendingWager {
	expr := strings.ToLower(strings.TrimSpace(raw))

	if expr == "all" {
		if balance <= 0 {
			return models.PendingWager{Message: "You have no money to bet."}
		}
		return models.PendingWager{Amount: balance}
	}

	amount, ok := parseAmountExpr(expr)
	if !ok {
		return models.PendingWager{Message: fmt.Sprintf("%q is not a valid bet amount.", raw)}
	}
	if amount <= 0 {
		return models.PendingWager{Message: "Bet amount must be positive."}
	}
	if amount > balance {
		if balance <= 0 {
			return models.PendingWager{Message: "You have no money to bet."}
		}
		return models.PendingWager{
			Amount:      balance,
			WasAdjusted: true,
			Message:     fmt.Sprintf("Bet of %d exceeds your balance, adjusted to %d.", amount, balance),
		}
	}
	return models.PendingWager{Amount: amount}
}

// parseAmountExpr parses an integer literal or a k/m/b shorthand with an
// optional fractional mantissa. Amounts too large for int64 saturate at
// MaxInt64; the over-balance adjustment catches them anyway.
func parseAmountExpr(expr string) (int64, bool) {
	if expr == "" {
		return 0, false
	}

	multiplier := int64(1)
	switch expr[len(expr)-1] {
	case 'k':
		multiplier = 1_000
	case 'm':
		multiplier = 1_000_000
	case 'b':
		multiplier = 1_000_000_000
	}

	if multiplier == 1 {
		amount, err := strconv.ParseInt(expr, 10, 64)
		return amount, err == nil
	}

	mantissa, err := strconv.ParseFloat(expr[:len(expr)-1], 64)
	if err != nil {
		return 0, false
	}
	value := mantissa * float64(multiplier)
	if value >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if value <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(value), true
}

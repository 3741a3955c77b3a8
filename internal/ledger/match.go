package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
)

// Settlement is the computed effect of applying one donation to a
// campaign: the new running totals plus the matched amount, if any.
// MatchAmount of zero means no matching donation is minted.
type Settlement struct {
	RaisedAmount decimal.Decimal
	MatchingPool decimal.Decimal
	MatchAmount  decimal.Decimal
}

// ComputeMatch returns the matched amount for a donation against the
// remaining pool. The match is amount x ratio, clamped to the pool so
// the pool can reach zero but never go negative.
func ComputeMatch(amount, ratio, pool decimal.Decimal) decimal.Decimal {
	if pool.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	match := amount.Mul(ratio).Round(2)
	if match.GreaterThan(pool) {
		match = pool
	}
	if match.IsNegative() {
		return decimal.Zero
	}
	return match
}

// SettleDonation computes the campaign state after one donation. Pure:
// the caller is responsible for persisting the result atomically while
// holding the campaign row lock.
func SettleDonation(c *domain.Campaign, amount decimal.Decimal) Settlement {
	s := Settlement{
		RaisedAmount: c.RaisedAmount.Add(amount),
		MatchingPool: c.MatchingPool,
		MatchAmount:  decimal.Zero,
	}

	if !c.MatchingEnabled {
		return s
	}

	match := ComputeMatch(amount, c.MatchingRatio, c.MatchingPool)
	if match.IsPositive() {
		s.MatchAmount = match
		s.MatchingPool = c.MatchingPool.Sub(match)
		s.RaisedAmount = s.RaisedAmount.Add(match)
	}
	return s
}

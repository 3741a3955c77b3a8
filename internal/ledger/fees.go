package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// Processor pricing: 2.9% + $0.30 per charge. The optional 1% platform
// fee applies only when the donor opts to cover fees.
var (
	processorRate = decimal.NewFromFloat(0.029)
	processorFlat = decimal.NewFromFloat(0.30)
	platformRate  = decimal.NewFromFloat(0.01)
)

// FeeBreakdown splits a gross donation amount into fees and the net
// amount the organization receives.
type FeeBreakdown struct {
	TransactionFee decimal.Decimal `json:"transaction_fee"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	NetAmount      decimal.Decimal `json:"net_amount"`
}

// ComputeFees calculates the fee breakdown for a donation amount. Pure:
// same inputs always produce the same breakdown, no side effects.
func ComputeFees(amount decimal.Decimal, coverFees bool) (FeeBreakdown, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return FeeBreakdown{}, xerrors.ErrInvalidAmount
	}

	txFee := amount.Mul(processorRate).Add(processorFlat).Round(2)

	platFee := decimal.Zero
	if coverFees {
		platFee = amount.Mul(platformRate).Round(2)
	}

	return FeeBreakdown{
		TransactionFee: txFee,
		PlatformFee:    platFee,
		NetAmount:      amount.Sub(txFee).Sub(platFee),
	}, nil
}

// ZeroFees is the breakdown for platform matching donations, which
// carry no processor charge: the full amount passes through.
func ZeroFees(amount decimal.Decimal) FeeBreakdown {
	return FeeBreakdown{
		TransactionFee: decimal.Zero,
		PlatformFee:    decimal.Zero,
		NetAmount:      amount,
	}
}

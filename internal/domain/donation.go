package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethodType string

const (
	MethodStripe       PaymentMethodType = "stripe"
	MethodPaypal       PaymentMethodType = "paypal"
	MethodBankTransfer PaymentMethodType = "bank_transfer"
	// MethodBulkImport tags donations migrated from another system
	// rather than charged through a processor.
	MethodBulkImport PaymentMethodType = "bulk_import"
	// MethodPlatformMatching marks the synthetic zero-fee donation the
	// platform records when a matching pool pays out.
	MethodPlatformMatching PaymentMethodType = "platform_matching"
)

type RecurringInterval string

const (
	IntervalMonthly   RecurringInterval = "monthly"
	IntervalQuarterly RecurringInterval = "quarterly"
	IntervalYearly    RecurringInterval = "yearly"
)

type DedicationType string

const (
	DedicationInHonorOf  DedicationType = "in_honor_of"
	DedicationInMemoryOf DedicationType = "in_memory_of"
)

type Donation struct {
	ID                 string             `json:"id"`
	UserID             *string            `json:"user_id,omitempty"` // nil for platform matching donations
	OrganizationID     string             `json:"organization_id"`
	CampaignID         *string            `json:"campaign_id,omitempty"`
	Amount             decimal.Decimal    `json:"amount"`
	Currency           string             `json:"currency"`
	PaymentMethod      PaymentMethodType  `json:"payment_method"`
	PaymentProcessorID string             `json:"payment_processor_id,omitempty"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	TransactionFee     decimal.Decimal    `json:"transaction_fee"`
	PlatformFee        decimal.Decimal    `json:"platform_fee"`
	NetAmount          decimal.Decimal    `json:"net_amount"`
	IsRecurring        bool               `json:"is_recurring"`
	RecurringInterval  *RecurringInterval `json:"recurring_interval,omitempty"`
	IsAnonymous        bool               `json:"is_anonymous"`
	DonorMessage       string             `json:"donor_message,omitempty"`
	DedicationType     *DedicationType    `json:"dedication_type,omitempty"`
	DedicationName     string             `json:"dedication_name,omitempty"`

	MatchingGiftEligible bool                `json:"matching_gift_eligible"`
	MatchingGiftStatus   *MatchingGiftStatus `json:"matching_gift_status,omitempty"`
	MatchingGiftAmount   *decimal.Decimal    `json:"matching_gift_amount,omitempty"`

	TaxReceiptSent   bool      `json:"tax_receipt_sent"`
	TaxReceiptNumber string    `json:"tax_receipt_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsPlatformMatch reports whether this donation was minted by the
// matching pool rather than paid by a donor.
func (d *Donation) IsPlatformMatch() bool {
	return d.PaymentMethod == MethodPlatformMatching
}

// DailyTotal is one day's slice of a campaign's donation history.
type DailyTotal struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CampaignAnalytics is the read-side aggregation over a campaign's
// completed donations. Recomputed on demand, never stored.
type CampaignAnalytics struct {
	CampaignID         string          `json:"campaign_id"`
	TotalDonations     int64           `json:"total_donations"`
	TotalRaised        decimal.Decimal `json:"total_raised"`
	AverageDonation    decimal.Decimal `json:"average_donation"`
	UniqueDonors       int64           `json:"unique_donors"`
	GoalAmount         decimal.Decimal `json:"goal_amount"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	DailyData          []DailyTotal    `json:"daily_data"`
	TopDonations       []*Donation     `json:"top_donations"`
}

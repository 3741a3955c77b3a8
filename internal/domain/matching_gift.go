package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MatchingGiftStatus string

const (
	MatchPending   MatchingGiftStatus = "pending"
	MatchSubmitted MatchingGiftStatus = "submitted"
	MatchApproved  MatchingGiftStatus = "approved"
	MatchPaid      MatchingGiftStatus = "paid"
	MatchDenied    MatchingGiftStatus = "denied"
)

// matchingGiftTransitions is the employer-side state machine:
// pending -> submitted -> approved -> paid, with denial possible while
// the request is under review.
var matchingGiftTransitions = map[MatchingGiftStatus][]MatchingGiftStatus{
	MatchPending:   {MatchSubmitted},
	MatchSubmitted: {MatchApproved, MatchDenied},
	MatchApproved:  {MatchPaid, MatchDenied},
	MatchPaid:      {},
	MatchDenied:    {},
}

// CanTransitionTo reports whether the lifecycle permits moving from s
// to next.
func (s MatchingGiftStatus) CanTransitionTo(next MatchingGiftStatus) bool {
	for _, allowed := range matchingGiftTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MatchingGift tracks an employer's pledge to match an employee's
// donation. Approval and payment are administrative inputs recorded by
// the employer's program, not computed here.
type MatchingGift struct {
	ID            string             `json:"id"`
	DonationID    string             `json:"donation_id"`
	EmployerName  string             `json:"employer_name"`
	EmployerEIN   string             `json:"employer_ein,omitempty"`
	EmployeeEmail string             `json:"employee_email"`
	MatchRatio    decimal.Decimal    `json:"match_ratio"`
	MatchAmount   decimal.Decimal    `json:"match_amount"`
	Status        MatchingGiftStatus `json:"status"`
	SubmittedAt   *time.Time         `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

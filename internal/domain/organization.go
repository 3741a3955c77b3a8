package domain

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type Organization struct {
	ID                  string             `json:"id"`
	EIN                 string             `json:"ein"` // normalized 9 digits
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	MissionStatement    string             `json:"mission_statement,omitempty"`
	WebsiteURL          string             `json:"website_url,omitempty"`
	LogoURL             string             `json:"logo_url,omitempty"`
	City                string             `json:"city,omitempty"`
	State               string             `json:"state,omitempty"`
	NTEECode            string             `json:"ntee_code,omitempty"`
	Category            string             `json:"category,omitempty"`
	TaxExemptStatus     string             `json:"tax_exempt_status,omitempty"`
	DeductibilityStatus string             `json:"deductibility_status,omitempty"`
	VerificationStatus  VerificationStatus `json:"verification_status"`
	VerifiedAt          *time.Time         `json:"verified_at,omitempty"`
	IsActive            bool               `json:"is_active"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// TaxDeductible reports whether donations to this organization qualify
// for a receipt marked deductible.
func (o *Organization) TaxDeductible() bool {
	return o.DeductibilityStatus == "Deductible"
}

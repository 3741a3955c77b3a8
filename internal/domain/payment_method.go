package domain

import "time"

// PaymentMethod is a saved payment instrument. Only tokenized provider
// references are stored, never card data.
type PaymentMethod struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MethodType  string    `json:"method_type"` // card, bank_account, paypal
	Provider    string    `json:"provider"`    // stripe, paypal
	ProviderRef string    `json:"provider_ref"`
	LastFour    string    `json:"last_four,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ExpiryMonth int       `json:"expiry_month,omitempty"`
	ExpiryYear  int       `json:"expiry_year,omitempty"`
	IsDefault   bool      `json:"is_default"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

type CampaignType string

const (
	CampaignGeneral    CampaignType = "general"
	CampaignEmergency  CampaignType = "emergency"
	CampaignProject    CampaignType = "project"
	CampaignPeerToPeer CampaignType = "peer_to_peer"
)

type Campaign struct {
	ID               string          `json:"id"`
	OrganizationID   string          `json:"organization_id"`
	CreatorID        *string         `json:"creator_id,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Story            string          `json:"story,omitempty"`
	GoalAmount       decimal.Decimal `json:"goal_amount"`
	RaisedAmount     decimal.Decimal `json:"raised_amount"`
	Currency         string          `json:"currency"`
	Category         string          `json:"category,omitempty"`
	Tags             []string        `json:"tags"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	Status           CampaignStatus  `json:"status"`
	CampaignType     CampaignType    `json:"campaign_type"`
	FeaturedImageURL string          `json:"featured_image_url,omitempty"`
	GalleryImages    []string        `json:"gallery_images"`
	VideoURL         string          `json:"video_url,omitempty"`
	MatchingEnabled  bool            `json:"matching_enabled"`
	MatchingPool     decimal.Decimal `json:"matching_pool"`
	MatchingRatio    decimal.Decimal `json:"matching_ratio"`
	AllowAnonymous   bool            `json:"allow_anonymous"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// Progress reports the funding percentage, clamped to 100. A campaign
// with no goal reports 0 rather than dividing by zero.
func (c *Campaign) Progress() decimal.Decimal {
	if c.GoalAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pct := c.RaisedAmount.Div(c.GoalAmount).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct.Round(2)
}

// IsActive reports whether the campaign accepts donations at the given
// instant: status must be active and now must fall inside the activity
// window. A missing bound leaves that side open.
func (c *Campaign) IsActive(now time.Time) bool {
	if c.Status != CampaignActive {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}

// CampaignUpdate is a progress note posted by the campaign creator.
type CampaignUpdate struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCampaignProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raised string
		goal   string
		want   string
	}{
		{"zero goal reports zero", "50", "0", "0"},
		{"halfway", "50", "100", "50"},
		{"overfunded clamps to 100", "150", "100", "100"},
		{"fractional", "33", "99", "33.33"},
		{"nothing raised", "0", "100", "0"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := &Campaign{RaisedAmount: dec(tc.raised), GoalAmount: dec(tc.goal)}
			assert.True(t, dec(tc.want).Equal(c.Progress()),
				"want %s got %s", tc.want, c.Progress())
		})
	}
}

func TestCampaignIsActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		status CampaignStatus
		start  *time.Time
		end    *time.Time
		want   bool
	}{
		{"active inside window", CampaignActive, &past, &future, true},
		{"active open ended", CampaignActive, nil, nil, true},
		{"not started yet", CampaignActive, &future, nil, false},
		{"already ended", CampaignActive, nil, &past, false},
		{"draft never active", CampaignDraft, &past, &future, false},
		{"completed never active", CampaignCompleted, nil, nil, false},
		{"paused never active", CampaignPaused, &past, &future, false},
		{"cancelled never active", CampaignCancelled, nil, nil, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := &Campaign{Status: tc.status, StartDate: tc.start, EndDate: tc.end}
			assert.Equal(t, tc.want, c.IsActive(now))
		})
	}
}

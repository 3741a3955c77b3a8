package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
)

func matchingCampaign(pool, ratio string) *domain.Campaign {
	return &domain.Campaign{
		ID:              "camp_test",
		RaisedAmount:    decimal.Zero,
		MatchingEnabled: true,
		MatchingPool:    dec(pool),
		MatchingRatio:   dec(ratio),
	}
}

func TestComputeMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
		ratio  string
		pool   string
		want   string
	}{
		{"full match within pool", "80", "1.0", "100", "80"},
		{"clamped to remaining pool", "80", "1.0", "30", "30"},
		{"exhausted pool", "80", "1.0", "0", "0"},
		{"half ratio", "80", "0.5", "100", "40"},
		{"double ratio clamps", "80", "2.0", "100", "100"},
		{"exact pool", "60", "1.0", "60", "60"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeMatch(dec(tc.amount), dec(tc.ratio), dec(tc.pool))
			assert.True(t, dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestSettleDonationWithMatch(t *testing.T) {
	t.Parallel()

	c := matchingCampaign("100", "1.0")
	s := SettleDonation(c, dec("80"))

	assert.True(t, dec("80").Equal(s.MatchAmount))
	assert.True(t, dec("20").Equal(s.MatchingPool))
	// raised grows by donation plus match
	assert.True(t, dec("160").Equal(s.RaisedAmount))
}

func TestSettleDonationClampsToPool(t *testing.T) {
	t.Parallel()

	c := matchingCampaign("30", "1.0")
	s := SettleDonation(c, dec("80"))

	assert.True(t, dec("30").Equal(s.MatchAmount))
	assert.True(t, s.MatchingPool.IsZero())
	assert.True(t, dec("110").Equal(s.RaisedAmount))
}

func TestSettleDonationMatchingDisabled(t *testing.T) {
	t.Parallel()

	c := matchingCampaign("100", "1.0")
	c.MatchingEnabled = false

	s := SettleDonation(c, dec("80"))
	assert.True(t, s.MatchAmount.IsZero())
	assert.True(t, dec("100").Equal(s.MatchingPool))
	assert.True(t, dec("80").Equal(s.RaisedAmount))
}

func TestSettleDonationSequentialDepletion(t *testing.T) {
	t.Parallel()

	// Two donations of 50 against a pool of 60: applied match must sum
	// to exactly 60 and the pool must never go negative.
	c := matchingCampaign("60", "1.0")

	first := SettleDonation(c, dec("50"))
	c.RaisedAmount = first.RaisedAmount
	c.MatchingPool = first.MatchingPool

	second := SettleDonation(c, dec("50"))

	assert.True(t, dec("50").Equal(first.MatchAmount))
	assert.True(t, dec("10").Equal(second.MatchAmount))
	assert.True(t, second.MatchingPool.IsZero())
	assert.False(t, second.MatchingPool.IsNegative())

	total := first.MatchAmount.Add(second.MatchAmount)
	assert.True(t, dec("60").Equal(total))
}

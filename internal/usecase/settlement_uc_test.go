package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activeCampaign(pool, ratio string) *domain.Campaign {
	return &domain.Campaign{
		ID:              "camp_01",
		OrganizationID:  "org_01",
		Title:           "Clean Water Fund",
		GoalAmount:      dec("1000"),
		RaisedAmount:    decimal.Zero,
		Currency:        "USD",
		Status:          domain.CampaignActive,
		MatchingEnabled: true,
		MatchingPool:    dec(pool),
		MatchingRatio:   dec(ratio),
	}
}

func newSettlementFixture(campaigns ...*domain.Campaign) (*SettlementUsecase, *memStore) {
	store := newMemStore(campaigns...)
	uc := NewSettlementUsecase(
		&memCampaignRepo{s: store},
		&memDonationRepo{s: store},
		store,
		nil, nil, nil,
		zap.NewNop(),
	)
	return uc, store
}

func donate(amount string) DonateRequest {
	return DonateRequest{
		CampaignID: "camp_01",
		UserID:     "usr_01",
		Amount:     dec(amount),
		Currency:   "USD",
	}
}

func TestSettleWithMatching(t *testing.T) {
	t.Parallel()

	uc, store := newSettlementFixture(activeCampaign("100", "1.0"))

	res, err := uc.Settle(context.Background(), donate("80"))
	require.NoError(t, err)

	// donor donation carries fees and is completed
	assert.Equal(t, domain.PaymentCompleted, res.Donation.PaymentStatus)
	assert.True(t, dec("80").Equal(res.Donation.Amount))
	assert.True(t, dec("2.62").Equal(res.Donation.TransactionFee)) // 80*0.029+0.30
	assert.True(t, res.Donation.PlatformFee.IsZero())

	// matching donation: zero-fee, anonymous, platform-attributed
	require.NotNil(t, res.MatchingDonation)
	assert.True(t, dec("80").Equal(res.MatchingDonation.Amount))
	assert.True(t, res.MatchingDonation.TransactionFee.IsZero())
	assert.True(t, res.MatchingDonation.IsAnonymous)
	assert.Nil(t, res.MatchingDonation.UserID)
	assert.Equal(t, domain.MethodPlatformMatching, res.MatchingDonation.PaymentMethod)
	assert.True(t, res.MatchingDonation.IsPlatformMatch())
	assert.False(t, res.Donation.IsPlatformMatch())

	// campaign totals: raised +160, pool 100 -> 20
	assert.True(t, dec("160").Equal(res.Campaign.RaisedAmount))
	assert.True(t, dec("20").Equal(res.Campaign.MatchingPool))

	// both rows persisted
	assert.Len(t, store.donations, 2)
	assert.True(t, dec("160").Equal(store.campaigns["camp_01"].RaisedAmount))
}

func TestSettleClampsMatchToPool(t *testing.T) {
	t.Parallel()

	uc, _ := newSettlementFixture(activeCampaign("30", "1.0"))

	res, err := uc.Settle(context.Background(), donate("80"))
	require.NoError(t, err)

	require.NotNil(t, res.MatchingDonation)
	assert.True(t, dec("30").Equal(res.MatchingDonation.Amount))
	assert.True(t, res.Campaign.MatchingPool.IsZero())
	assert.True(t, dec("110").Equal(res.Campaign.RaisedAmount))
}

func TestSettleRejectsInvalidAmount(t *testing.T) {
	t.Parallel()

	uc, store := newSettlementFixture(activeCampaign("100", "1.0"))

	for _, amount := range []string{"0", "-5"} {
		_, err := uc.Settle(context.Background(), donate(amount))
		assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)
	}

	// no mutation happened
	assert.Empty(t, store.donations)
	assert.True(t, store.campaigns["camp_01"].RaisedAmount.IsZero())
	assert.True(t, dec("100").Equal(store.campaigns["camp_01"].MatchingPool))
}

func TestSettleRejectsInactiveCampaign(t *testing.T) {
	t.Parallel()

	c := activeCampaign("100", "1.0")
	c.Status = domain.CampaignCompleted
	uc, store := newSettlementFixture(c)

	_, err := uc.Settle(context.Background(), donate("50"))
	assert.ErrorIs(t, err, xerrors.ErrCampaignNotActive)
	assert.Empty(t, store.donations)
	assert.True(t, store.campaigns["camp_01"].RaisedAmount.IsZero())
}

func TestSettleUnknownCampaign(t *testing.T) {
	t.Parallel()

	uc, _ := newSettlementFixture(activeCampaign("100", "1.0"))

	req := donate("50")
	req.CampaignID = "camp_missing"
	_, err := uc.Settle(context.Background(), req)
	assert.ErrorIs(t, err, xerrors.ErrCampaignNotFound)
}

func TestSettleRollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	uc, store := newSettlementFixture(activeCampaign("100", "1.0"))
	store.failDonationInsert = 2 // donor row lands, matching row fails

	_, err := uc.Settle(context.Background(), donate("80"))
	assert.ErrorIs(t, err, xerrors.ErrPersistence)

	// full rollback: no donation retained, totals untouched
	assert.Empty(t, store.donations)
	assert.True(t, store.campaigns["camp_01"].RaisedAmount.IsZero())
	assert.True(t, dec("100").Equal(store.campaigns["camp_01"].MatchingPool))
}

func TestSettleConcurrentPoolDepletion(t *testing.T) {
	t.Parallel()

	// Two concurrent donations of 50 against a pool of 60: serialized
	// settlement must hand out exactly 60, never 100.
	uc, store := newSettlementFixture(activeCampaign("60", "1.0"))

	var wg sync.WaitGroup
	results := make([]*SettlementResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Settle(context.Background(), donate("50"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	totalMatch := decimal.Zero
	for _, res := range results {
		if res.MatchingDonation != nil {
			totalMatch = totalMatch.Add(res.MatchingDonation.Amount)
		}
	}

	assert.True(t, dec("60").Equal(totalMatch), "total match %s", totalMatch)

	final := store.campaigns["camp_01"]
	assert.True(t, final.MatchingPool.IsZero())
	assert.False(t, final.MatchingPool.IsNegative())
	// raised = 50 + 50 + 60 matched
	assert.True(t, dec("160").Equal(final.RaisedAmount))
}

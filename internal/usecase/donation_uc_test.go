package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

func seedDonation(t *testing.T, repo *memDonationRepo, userID string, status domain.PaymentStatus, recurring bool) *domain.Donation {
	t.Helper()

	d := &domain.Donation{
		ID:             "don_" + string(status) + map[bool]string{true: "_rec", false: ""}[recurring],
		UserID:         &userID,
		OrganizationID: "org_1",
		Amount:         decimal.RequireFromString("50.00"),
		Currency:       "USD",
		PaymentMethod:  domain.MethodStripe,
		PaymentStatus:  status,
		IsRecurring:    recurring,
	}
	require.NoError(t, repo.Create(context.Background(), nil, d))
	return d
}

func TestCancelDonation(t *testing.T) {
	t.Parallel()

	newFixture := func() (*DonationUsecase, *memDonationRepo) {
		store := newMemStore()
		repo := &memDonationRepo{s: store}
		uc := NewDonationUsecase(repo, nil, nil, store, nil, nil, zap.NewNop())
		return uc, repo
	}

	t.Run("pending one-off cancels", func(t *testing.T) {
		t.Parallel()
		uc, repo := newFixture()
		d := seedDonation(t, repo, "usr_1", domain.PaymentPending, false)

		out, err := uc.Cancel(context.Background(), d.ID, "usr_1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCancelled, out.PaymentStatus)
	})

	t.Run("completed recurring stops the schedule", func(t *testing.T) {
		t.Parallel()
		uc, repo := newFixture()
		d := seedDonation(t, repo, "usr_1", domain.PaymentCompleted, true)

		out, err := uc.Cancel(context.Background(), d.ID, "usr_1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCancelled, out.PaymentStatus)
	})

	t.Run("completed one-off has no schedule to stop", func(t *testing.T) {
		t.Parallel()
		uc, repo := newFixture()
		d := seedDonation(t, repo, "usr_1", domain.PaymentCompleted, false)

		_, err := uc.Cancel(context.Background(), d.ID, "usr_1")
		assert.ErrorIs(t, err, xerrors.ErrNotRecurring)

		got, gerr := repo.GetByID(context.Background(), d.ID)
		require.NoError(t, gerr)
		assert.Equal(t, domain.PaymentCompleted, got.PaymentStatus)
	})

	t.Run("already cancelled", func(t *testing.T) {
		t.Parallel()
		uc, repo := newFixture()
		d := seedDonation(t, repo, "usr_1", domain.PaymentCancelled, false)

		_, err := uc.Cancel(context.Background(), d.ID, "usr_1")
		assert.ErrorIs(t, err, xerrors.ErrInvalidTransition)
	})

	t.Run("someone else's donation stays hidden", func(t *testing.T) {
		t.Parallel()
		uc, repo := newFixture()
		d := seedDonation(t, repo, "usr_1", domain.PaymentPending, false)

		_, err := uc.Cancel(context.Background(), d.ID, "usr_2")
		assert.ErrorIs(t, err, xerrors.ErrDonationNotFound)
	})
}

func TestBulkImport(t *testing.T) {
	t.Parallel()

	item := func(userID string, amount string) BulkDonationItem {
		return BulkDonationItem{
			UserID:         userID,
			OrganizationID: "org_1",
			Amount:         decimal.RequireFromString(amount),
		}
	}

	t.Run("records completed history", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		repo := &memDonationRepo{s: store}
		uc := NewDonationUsecase(repo, nil, nil, store, nil, nil, zap.NewNop())

		created, err := uc.BulkImport(context.Background(), []BulkDonationItem{
			item("usr_1", "100.00"),
			item("usr_2", "25.00"),
		})
		require.NoError(t, err)
		require.Len(t, created, 2)

		for _, d := range created {
			assert.Equal(t, domain.PaymentCompleted, d.PaymentStatus)
			assert.Equal(t, domain.MethodBulkImport, d.PaymentMethod)
			assert.False(t, d.TransactionFee.IsZero())
		}
		// 100.00 * 0.029 + 0.30 = 3.20
		assert.True(t, decimal.RequireFromString("3.20").Equal(created[0].TransactionFee))
		assert.Len(t, store.donations, 2)
	})

	t.Run("rejects empty and incomplete batches", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		repo := &memDonationRepo{s: store}
		uc := NewDonationUsecase(repo, nil, nil, store, nil, nil, zap.NewNop())

		_, err := uc.BulkImport(context.Background(), nil)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		_, err = uc.BulkImport(context.Background(), []BulkDonationItem{
			item("usr_1", "10.00"),
			{OrganizationID: "org_1", Amount: decimal.RequireFromString("5.00")},
		})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		assert.Empty(t, store.donations)

		_, err = uc.BulkImport(context.Background(), []BulkDonationItem{item("usr_1", "0")})
		assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)
		assert.Empty(t, store.donations)
	})

	t.Run("partial insert failure rolls the batch back", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		store.failDonationInsert = 2
		repo := &memDonationRepo{s: store}
		uc := NewDonationUsecase(repo, nil, nil, store, nil, nil, zap.NewNop())

		_, err := uc.BulkImport(context.Background(), []BulkDonationItem{
			item("usr_1", "10.00"),
			item("usr_2", "20.00"),
			item("usr_3", "30.00"),
		})
		assert.ErrorIs(t, err, xerrors.ErrPersistence)
		assert.Empty(t, store.donations)
	})
}

package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// memStore is an in-memory stand-in for the entity store. Its tx
// manager serializes callers with a mutex and restores a snapshot on
// error, mirroring the rollback contract of the real store.
type memStore struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
	donations []*domain.Donation

	failDonationInsert int // fail the nth insert (1-based), 0 = never
	insertCount        int
}

func newMemStore(campaigns ...*domain.Campaign) *memStore {
	s := &memStore{campaigns: make(map[string]*domain.Campaign)}
	for _, c := range campaigns {
		cc := *c
		s.campaigns[c.ID] = &cc
	}
	return s
}

func (s *memStore) snapshot() (map[string]*domain.Campaign, []*domain.Donation) {
	camps := make(map[string]*domain.Campaign, len(s.campaigns))
	for k, v := range s.campaigns {
		cc := *v
		camps[k] = &cc
	}
	dons := make([]*domain.Donation, len(s.donations))
	copy(dons, s.donations)
	return camps, dons
}

// WithSerializable serializes transactions and rolls state back when fn
// fails, like the database would.
func (s *memStore) WithSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	camps, dons := s.snapshot()
	if err := fn(nil); err != nil {
		s.campaigns = camps
		s.donations = dons
		return err
	}
	return nil
}

var _ repository.TxManager = (*memStore)(nil)

// --- campaign repository ---

type memCampaignRepo struct{ s *memStore }

func (r *memCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	cc := *c
	r.s.campaigns[c.ID] = &cc
	return nil
}

func (r *memCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, xerrors.ErrCampaignNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *memCampaignRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Campaign, error) {
	return r.GetByID(ctx, id)
}

func (r *memCampaignRepo) ApplySettlement(ctx context.Context, tx pgx.Tx, id string, raised, pool decimal.Decimal) error {
	c, ok := r.s.campaigns[id]
	if !ok {
		return xerrors.ErrCampaignNotFound
	}
	c.RaisedAmount = raised
	c.MatchingPool = pool
	return nil
}

func (r *memCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	if _, ok := r.s.campaigns[c.ID]; !ok {
		return xerrors.ErrCampaignNotFound
	}
	cc := *c
	r.s.campaigns[c.ID] = &cc
	return nil
}

func (r *memCampaignRepo) Delete(ctx context.Context, id string) error {
	delete(r.s.campaigns, id)
	return nil
}

func (r *memCampaignRepo) List(ctx context.Context, f repository.CampaignFilter) ([]*domain.Campaign, int64, error) {
	var out []*domain.Campaign
	for _, c := range r.s.campaigns {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memCampaignRepo) Featured(ctx context.Context, limit int) ([]*domain.Campaign, error) {
	return nil, nil
}

func (r *memCampaignRepo) HasDonations(ctx context.Context, id string) (bool, error) {
	for _, d := range r.s.donations {
		if d.CampaignID != nil && *d.CampaignID == id {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.CampaignRepository = (*memCampaignRepo)(nil)

// --- donation repository ---

var errInsertFailed = errors.New("simulated insert failure")

type memDonationRepo struct{ s *memStore }

func (r *memDonationRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error {
	r.s.insertCount++
	if r.s.failDonationInsert > 0 && r.s.insertCount == r.s.failDonationInsert {
		return errInsertFailed
	}
	dd := *d
	r.s.donations = append(r.s.donations, &dd)
	return nil
}

func (r *memDonationRepo) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	for _, d := range r.s.donations {
		if d.ID == id {
			dd := *d
			return &dd, nil
		}
	}
	return nil, xerrors.ErrDonationNotFound
}

func (r *memDonationRepo) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	for _, d := range r.s.donations {
		if d.ID == id {
			d.PaymentStatus = status
			return nil
		}
	}
	return xerrors.ErrDonationNotFound
}

func (r *memDonationRepo) SetMatchingGift(ctx context.Context, id string, status domain.MatchingGiftStatus, amount decimal.Decimal) error {
	for _, d := range r.s.donations {
		if d.ID == id {
			st := status
			amt := amount
			d.MatchingGiftStatus = &st
			d.MatchingGiftAmount = &amt
			return nil
		}
	}
	return xerrors.ErrDonationNotFound
}

func (r *memDonationRepo) MarkReceiptSent(ctx context.Context, id, receiptNumber string) error {
	for _, d := range r.s.donations {
		if d.ID == id {
			d.TaxReceiptSent = true
			d.TaxReceiptNumber = receiptNumber
			return nil
		}
	}
	return xerrors.ErrDonationNotFound
}

func (r *memDonationRepo) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*domain.Donation, error) {
	var out []*domain.Donation
	for _, d := range r.s.donations {
		if d.CampaignID != nil && *d.CampaignID == campaignID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDonationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Donation, error) {
	var out []*domain.Donation
	for _, d := range r.s.donations {
		if d.UserID != nil && *d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDonationRepo) YearlyCompleted(ctx context.Context, userID string, year int) ([]*domain.Donation, decimal.Decimal, error) {
	total := decimal.Zero
	var out []*domain.Donation
	for _, d := range r.s.donations {
		if d.UserID != nil && *d.UserID == userID && d.PaymentStatus == domain.PaymentCompleted && d.CreatedAt.Year() == year {
			out = append(out, d)
			total = total.Add(d.Amount)
		}
	}
	return out, total, nil
}

func (r *memDonationRepo) Analytics(ctx context.Context, campaignID string) (*domain.CampaignAnalytics, error) {
	a := &domain.CampaignAnalytics{CampaignID: campaignID}
	for _, d := range r.s.donations {
		if d.CampaignID != nil && *d.CampaignID == campaignID && d.PaymentStatus == domain.PaymentCompleted {
			a.TotalDonations++
			a.TotalRaised = a.TotalRaised.Add(d.Amount)
		}
	}
	return a, nil
}

var _ repository.DonationRepository = (*memDonationRepo)(nil)

// --- matching gift repository ---

type memMatchingGiftRepo struct {
	mu    sync.Mutex
	gifts map[string]*domain.MatchingGift
}

func newMemMatchingGiftRepo() *memMatchingGiftRepo {
	return &memMatchingGiftRepo{gifts: make(map[string]*domain.MatchingGift)}
}

func (r *memMatchingGiftRepo) Create(ctx context.Context, mg *domain.MatchingGift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cc := *mg
	r.gifts[mg.ID] = &cc
	return nil
}

func (r *memMatchingGiftRepo) GetByID(ctx context.Context, id string) (*domain.MatchingGift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mg, ok := r.gifts[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cc := *mg
	return &cc, nil
}

func (r *memMatchingGiftRepo) ExistsForDonation(ctx context.Context, donationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mg := range r.gifts {
		if mg.DonationID == donationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMatchingGiftRepo) UpdateStatus(ctx context.Context, mg *domain.MatchingGift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gifts[mg.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cc := *mg
	r.gifts[mg.ID] = &cc
	return nil
}

var _ repository.MatchingGiftRepository = (*memMatchingGiftRepo)(nil)

// --- user repository ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		uu := *u
		r.users[u.ID] = &uu
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return xerrors.ErrEmailAlreadyInUse
		}
	}
	uu := *u
	r.users[u.ID] = &uu
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	uu := *u
	return &uu, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			uu := *u
			return &uu, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *memUserRepo) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AuthProvider == provider && u.AuthProviderID != nil && *u.AuthProviderID == providerID {
			uu := *u
			return &uu, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	uu := *u
	r.users[u.ID] = &uu
	return nil
}

func (r *memUserRepo) LinkProvider(ctx context.Context, userID string, provider domain.AuthProvider, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.AuthProvider = provider
	u.AuthProviderID = &providerID
	u.EmailVerified = true
	return nil
}

func (r *memUserRepo) UnlinkProvider(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.AuthProvider = domain.ProviderEmail
	u.AuthProviderID = nil
	return nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

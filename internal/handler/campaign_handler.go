package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type CampaignHandler struct {
	campaignUC  *usecase.CampaignUsecase
	settlement  *usecase.SettlementUsecase
	analyticsUC *usecase.AnalyticsUsecase
	authUC      *usecase.AuthUsecase
	logger      *zap.Logger
}

func NewCampaignHandler(
	campaignUC *usecase.CampaignUsecase,
	settlement *usecase.SettlementUsecase,
	analyticsUC *usecase.AnalyticsUsecase,
	authUC *usecase.AuthUsecase,
	logger *zap.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		campaignUC:  campaignUC,
		settlement:  settlement,
		analyticsUC: analyticsUC,
		authUC:      authUC,
		logger:      logger,
	}
}

type campaignRequest struct {
	OrganizationID   string                `json:"organization_id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Story            string                `json:"story"`
	GoalAmount       decimal.Decimal       `json:"goal_amount"`
	Currency         string                `json:"currency"`
	Category         string                `json:"category"`
	Tags             []string              `json:"tags"`
	StartDate        *time.Time            `json:"start_date"`
	EndDate          *time.Time            `json:"end_date"`
	Status           domain.CampaignStatus `json:"status"`
	CampaignType     domain.CampaignType   `json:"campaign_type"`
	FeaturedImageURL string                `json:"featured_image_url"`
	GalleryImages    []string              `json:"gallery_images"`
	VideoURL         string                `json:"video_url"`
	MatchingEnabled  bool                  `json:"matching_enabled"`
	MatchingPool     decimal.Decimal       `json:"matching_pool"`
	MatchingRatio    decimal.Decimal       `json:"matching_ratio"`
	AllowAnonymous   *bool                 `json:"allow_anonymous"`
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.campaignUC.Create(r.Context(), usecase.CreateCampaignRequest{
		OrganizationID:   req.OrganizationID,
		CreatorID:        middleware.UserID(r.Context()),
		Title:            req.Title,
		Description:      req.Description,
		Story:            req.Story,
		GoalAmount:       req.GoalAmount,
		Currency:         req.Currency,
		Category:         req.Category,
		Tags:             req.Tags,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Status:           req.Status,
		CampaignType:     req.CampaignType,
		FeaturedImageURL: req.FeaturedImageURL,
		GalleryImages:    req.GalleryImages,
		VideoURL:         req.VideoURL,
		MatchingEnabled:  req.MatchingEnabled,
		MatchingPool:     req.MatchingPool,
		MatchingRatio:    req.MatchingRatio,
		AllowAnonymous:   req.AllowAnonymous,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("campaign created", zap.String("campaign_id", c.ID))
	response.JSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.CampaignFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page", 1),
		PerPage:  queryInt(r, "per_page", 20),
	}

	campaigns, total, err := h.campaignUC.List(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Paginated(w, http.StatusOK, campaigns, response.Meta{
		Page: f.Page, PerPage: f.PerPage, Total: total,
	})
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.campaignUC.Update(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()),
		func(c *domain.Campaign) error {
			if req.Title != "" {
				c.Title = req.Title
			}
			if req.Description != "" {
				c.Description = req.Description
			}
			if req.Story != "" {
				c.Story = req.Story
			}
			if req.GoalAmount.GreaterThan(decimal.Zero) {
				c.GoalAmount = req.GoalAmount
			}
			if req.Category != "" {
				c.Category = req.Category
			}
			if req.Tags != nil {
				c.Tags = req.Tags
			}
			if req.StartDate != nil {
				c.StartDate = req.StartDate
			}
			if req.EndDate != nil {
				c.EndDate = req.EndDate
			}
			if req.Status != "" {
				c.Status = req.Status
			}
			if req.CampaignType != "" {
				c.CampaignType = req.CampaignType
			}
			if req.FeaturedImageURL != "" {
				c.FeaturedImageURL = req.FeaturedImageURL
			}
			if req.GalleryImages != nil {
				c.GalleryImages = req.GalleryImages
			}
			if req.VideoURL != "" {
				c.VideoURL = req.VideoURL
			}
			if req.AllowAnonymous != nil {
				c.AllowAnonymous = *req.AllowAnonymous
			}
			return nil
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaignUC.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "campaign deleted"})
}

func (h *CampaignHandler) Featured(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaignUC.Featured(r.Context(), queryInt(r, "limit", 6))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.campaignUC.AddUpdate(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()),
		req.Title, req.Content, req.ImageURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, u)
}

func (h *CampaignHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := h.campaignUC.ListUpdates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, updates)
}

type donateRequest struct {
	Amount               decimal.Decimal          `json:"amount"`
	Currency             string                   `json:"currency"`
	PaymentMethod        domain.PaymentMethodType `json:"payment_method"`
	CoverFees            bool                     `json:"cover_fees"`
	IsAnonymous          bool                     `json:"is_anonymous"`
	DonorMessage         string                   `json:"donor_message"`
	MatchingGiftEligible bool                     `json:"matching_gift_eligible"`
	DedicationType       *domain.DedicationType   `json:"dedication_type"`
	DedicationName       string                   `json:"dedication_name"`
}

// Donate settles a campaign donation: fees, campaign totals and any
// matching-pool payout land in one transaction.
func (h *CampaignHandler) Donate(w http.ResponseWriter, r *http.Request) {
	var req donateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.UserID(r.Context())
	donorName := ""
	if userID != "" && !req.IsAnonymous {
		if user, err := h.authUC.Me(r.Context(), userID); err == nil {
			donorName = user.FullName()
		}
	}

	result, err := h.settlement.Settle(r.Context(), usecase.DonateRequest{
		CampaignID:           chi.URLParam(r, "id"),
		UserID:               userID,
		DonorName:            donorName,
		Amount:               req.Amount,
		Currency:             req.Currency,
		PaymentMethod:        req.PaymentMethod,
		CoverFees:            req.CoverFees,
		IsAnonymous:          req.IsAnonymous,
		DonorMessage:         req.DonorMessage,
		MatchingGiftEligible: req.MatchingGiftEligible,
		DedicationType:       req.DedicationType,
		DedicationName:       req.DedicationName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

func (h *CampaignHandler) Donations(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if page < 1 {
		page = 1
	}

	donations, err := h.analyticsUC.CampaignDonations(r.Context(), chi.URLParam(r, "id"), perPage, (page-1)*perPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	views := make([]campaignDonationView, 0, len(donations))
	for _, d := range donations {
		views = append(views, campaignDonationView{
			ID:            d.ID,
			Amount:        d.Amount,
			Currency:      d.Currency,
			Message:       d.DonorMessage,
			IsAnonymous:   d.IsAnonymous,
			PlatformMatch: d.IsPlatformMatch(),
			CreatedAt:     d.CreatedAt,
		})
	}
	response.JSON(w, http.StatusOK, views)
}

// campaignDonationView is the public shape of a donation on a campaign
// page. Donor identity stays server-side; pool-minted matches are
// labeled so the feed can render them distinctly.
type campaignDonationView struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Message       string          `json:"message,omitempty"`
	IsAnonymous   bool            `json:"is_anonymous"`
	PlatformMatch bool            `json:"platform_match"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (h *CampaignHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.analyticsUC.CampaignAnalytics(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

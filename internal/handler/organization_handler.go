package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type OrganizationHandler struct {
	orgUC  *usecase.OrganizationUsecase
	logger *zap.Logger
}

func NewOrganizationHandler(orgUC *usecase.OrganizationUsecase, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgUC: orgUC, logger: logger}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if page < 1 {
		page = 1
	}

	orgs, total, err := h.orgUC.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Paginated(w, http.StatusOK, orgs, response.Meta{Page: page, PerPage: perPage, Total: total})
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get("ein")
	}

	orgs, err := h.orgUC.Search(r.Context(), usecase.OrganizationSearchRequest{
		Query:    query,
		State:    q.Get("state"),
		Category: q.Get("category"),
		Limit:    queryInt(r, "limit", 20),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, orgs)
}

// Verify re-checks an organization's EIN against the IRS dataset.
func (h *OrganizationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	v, err := h.orgUC.Verify(r.Context(), org.EIN)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, v)
}

func (h *OrganizationHandler) Categories(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.orgUC.Categories())
}

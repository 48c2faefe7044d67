package coupon

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/pricing"
)

// Handler exposes coupon endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type validateRequest struct {
	Code     string        `json:"code" validate:"required"`
	Subtotal pricing.Money `json:"subtotal" validate:"gte=0"`
}

// Validate handles POST /api/v1/coupons/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.service.Resolve(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		common.WriteError(w, AsAppError(err))
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"code":         c.Code,
		"discountRate": c.DiscountRate,
		"reduction":    pricing.CouponReduction(req.Subtotal, c.DiscountRate),
	})
}

// List handles GET /api/v1/admin/coupons.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	views := make([]adminView, 0, len(records))
	for _, rec := range records {
		views = append(views, viewOf(rec))
	}
	common.Data(w, http.StatusOK, views)
}

// adminView adds the whole percentage admins entered next to the stored rate.
type adminView struct {
	Record
	Percent int64 `json:"percent"`
}

func viewOf(r Record) adminView {
	return adminView{Record: r, Percent: r.Percent()}
}

// Create handles POST /api/v1/admin/coupons.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	rec, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, viewOf(rec))
}

// Delete handles DELETE /api/v1/admin/coupons/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminRoutes mounts coupon management endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/coupons", h.List)
	r.Post("/coupons", h.Create)
	r.Delete("/coupons/{id}", h.Delete)
}

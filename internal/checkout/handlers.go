package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/pricing"
)

type Handler struct {
	Svc *Service
}

type couponRequest struct {
	Session Session `json:"session"`
	Code    string  `json:"code" validate:"required,max=64"`
}

// Quote handles POST /checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var sess Session
	if err := common.DecodeAndValidate(r, &sess); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	q, err := h.Svc.Quote(r.Context(), userID, sess)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// ApplyCoupon handles POST /checkout/coupon. Failures keep the caller's session as is.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	sess, err := h.Svc.ApplyCoupon(r.Context(), userID, req.Session, req.Code)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.Svc.Quote(r.Context(), userID, sess)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// Submit handles POST /checkout.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sess Session
	if err := common.DecodeAndValidate(r, &sess); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	receipt, err := h.Svc.Submit(r.Context(), userID, sess)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, receipt)
}

func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{
		"data":    pricing.PaymentMethods(),
		"default": pricing.DefaultPaymentMethod,
	})
}

// Routes mounts the checkout endpoints. submit wraps only the order submission, typically
// with idempotency and rate limiting.
func (h *Handler) Routes(r chi.Router, submit ...func(http.Handler) http.Handler) {
	r.Get("/payment-methods", h.PaymentMethods)
	r.Post("/quote", h.Quote)
	r.Post("/coupon", h.ApplyCoupon)
	r.With(submit...).Post("/", h.Submit)
}

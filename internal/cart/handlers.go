package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
)

// Handler wires cart services to HTTP. Every route requires an authenticated member.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func bagBody(b Bag) map[string]any {
	return map[string]any{"items": b, "count": b.Count()}
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	bag, err := h.service.Get(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, bagBody(bag))
}

type addRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// Add handles POST /api/v1/cart/items.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	res, err := h.service.Add(r.Context(), userID, req.ProductID, req.Quantity)
	h.respond(w, res, err)
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// Adjust handles PATCH /api/v1/cart/items/{productId}.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	res, err := h.service.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "productId"), req.Delta)
	h.respond(w, res, err)
}

// Remove handles DELETE /api/v1/cart/items/{productId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	res, err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "productId"))
	h.respond(w, res, err)
}

// Clear handles DELETE /api/v1/cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	if err := h.service.Clear(r.Context(), userID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type mergeRequest struct {
	Items []MergeLine `json:"items" validate:"max=100,dive"`
}

// Merge handles POST /api/v1/cart/merge.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	bag, err := h.service.Merge(r.Context(), userID, req.Items)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, bagBody(bag))
}

// respond renders the settled bag. Sync failures still return the bag the client should show.
func (h *Handler) respond(w http.ResponseWriter, res Result, err error) {
	var syncErr *SyncError
	switch {
	case errors.As(err, &syncErr):
		common.JSONError(w, http.StatusServiceUnavailable, "CART_SYNC_FAILED", "cart change was not saved", map[string]any{
			"outcome": syncErr.Result.Outcome.String(),
			"cart":    bagBody(syncErr.Result.State),
		})
	case err != nil:
		common.WriteError(w, err)
	default:
		common.Data(w, http.StatusOK, bagBody(res.State))
	}
}

// Routes mounts the member cart endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.Add)
	r.Patch("/items/{productId}", h.Adjust)
	r.Delete("/items/{productId}", h.Remove)
	r.Post("/merge", h.Merge)
}

package favorites

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/optimistic"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/favorites.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	ids, err := h.service.List(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, ids)
}

// Toggle handles POST /api/v1/favorites/{productId}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	productID := chi.URLParam(r, "productId")
	res, err := h.service.Toggle(r.Context(), userID, productID)
	var appErr *common.AppError
	if err != nil && (res.Outcome == optimistic.Committed || errors.As(err, &appErr)) {
		common.WriteError(w, err)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "FAVORITES_SYNC_FAILED", "favourite change was not saved", map[string]any{
			"outcome":   res.Outcome.String(),
			"favorites": res.State,
		})
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"favorites":  res.State,
		"isFavorite": slices.Contains(res.State, productID),
	})
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{productId}/toggle", h.Toggle)
}

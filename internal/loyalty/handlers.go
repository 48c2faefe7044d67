package loyalty

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
)

// Handler exposes club endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me handles GET /api/v1/club/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, status)
}

// Members handles GET /api/v1/admin/members.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50, 200)
	members, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Page(w, members, common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)})
}

type setPointsRequest struct {
	Points *int64 `json:"points" validate:"required"`
}

// SetPoints handles PUT /api/v1/admin/members/{id}/points.
func (h *Handler) SetPoints(w http.ResponseWriter, r *http.Request) {
	var req setPointsRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	m, err := h.service.SetPoints(r.Context(), chi.URLParam(r, "id"), *req.Points)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, StatusFor(m))
}

// Delete handles DELETE /api/v1/admin/members/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminRoutes mounts member management endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/members", h.Members)
	r.Put("/members/{id}/points", h.SetPoints)
	r.Delete("/members/{id}", h.Delete)
}

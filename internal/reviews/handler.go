package reviews

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/matita-boutique/internal/common"
)

type Handler struct {
	svc            *Service
	defaultPerPage int
}

func NewHandler(svc *Service, defaultPerPage int) *Handler {
	if defaultPerPage <= 0 {
		defaultPerPage = 20
	}
	return &Handler{svc: svc, defaultPerPage: defaultPerPage}
}

// List handles GET /reviews and GET /products/{id}/reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.defaultPerPage, 100)
	items, err := h.svc.List(r.Context(), chi.URLParam(r, "id"), page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Page(w, items, common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	review, err := h.svc.Add(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, review)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, st)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the public review endpoints. Posting requires an authenticated member.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/reviews", h.List)
	r.Get("/products/{id}/reviews", h.List)
	r.Get("/products/{id}/reviews/stats", h.Stats)
	r.With(requireAuth).Post("/products/{id}/reviews", h.Create)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Delete("/reviews/{id}", h.Delete)
}

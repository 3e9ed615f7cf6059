package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
)

// AdminHandler handles user administration requests.
type AdminHandler struct {
	admin *league.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *league.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// GetUsers returns all known user accounts.
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email != "" {
		user, err := h.admin.GetUserByEmail(r.Context(), email)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.Success(w, user)
		return
	}

	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, users)
}

// PromoteUser grants admin privileges.
func (h *AdminHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, true)
}

// DemoteUser revokes admin privileges.
func (h *AdminHandler) DemoteUser(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, false)
}

func (h *AdminHandler) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	userID := chi.URLParam(r, "userID")

	if err := h.admin.SetAdmin(r.Context(), userID, isAdmin); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

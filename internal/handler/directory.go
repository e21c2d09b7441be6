package handler

import (
	"errors"
	"net/http"

	"github.com/rotadesk/rota/backend/internal/domain"
)

// GetMe returns the signed-in user with the company settings, so the client can hide the
// rota when it is switched off.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(r)

	user, err := h.directory.GetUserByID(r.Context(), actor.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.errorResponse(w, r, "user does not exist")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	settings, err := h.directory.GetCompanySettings(r.Context(), actor.CompanyID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "profile fetched", map[string]any{
		"user":     user,
		"settings": settings,
	})
}

// GetRoster lists the active members of the company, used to pick an assignee.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.GetRoster(r.Context(), h.companyID(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	h.successResponse(w, r, "roster fetched", users)
}

func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.directory.GetLocations(r.Context(), h.companyID(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if locations == nil {
		locations = []*domain.Location{}
	}

	h.successResponse(w, r, "locations fetched", locations)
}

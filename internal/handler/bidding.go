package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Bid(w http.ResponseWriter, r *http.Request) {
	shift, err := h.service.Bid(r.Context(), h.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "bid placed", shift)
}

func (h *Handler) CancelBid(w http.ResponseWriter, r *http.Request) {
	shift, err := h.service.CancelBid(r.Context(), h.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "bid withdrawn", shift)
}

func (h *Handler) Offer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offered *bool `json:"offered" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.service.Offer(r.Context(), h.actor(r), chi.URLParam(r, "id"), *req.Offered)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	msg := "offer withdrawn"
	if *req.Offered {
		msg = "shift offered"
	}
	h.successResponse(w, r, msg, shift)
}

// PreviewAssign returns the conflicts of an assignment together with the token that
// confirms it at /confirmations/{token}.
func (h *Handler) PreviewAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	preview, err := h.service.PreviewAssign(r.Context(), h.companyID(r), chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "confirm the assignment", preview)
}

func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	shift, err := h.service.Unassign(r.Context(), h.companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift unassigned", shift)
}

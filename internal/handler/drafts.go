package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotadesk/rota/backend/internal/rota"
)

func (h *Handler) GetDraftCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.GetGlobalDraftCount(r.Context(), h.companyID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "draft count fetched", map[string]int{"count": n})
}

// readScope reads an optional {"week": "YYYY-MM-DD"} body. No week means every draft.
func (h *Handler) readScope(r *http.Request) (*rota.Scope, error) {
	var req struct {
		Week string `json:"week" validate:"omitempty,day"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Week == "" {
		return nil, nil
	}

	days, err := h.days(req.Week)
	if err != nil {
		return nil, err
	}
	return rota.WeekScope(rota.WeekOf(days[0])), nil
}

func (h *Handler) PreviewPublish(w http.ResponseWriter, r *http.Request) {
	scope, err := h.readScope(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	pending, err := h.service.PreviewPublish(r.Context(), h.companyID(r), scope)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "confirm to publish the drafts", pending)
}

func (h *Handler) PreviewClearDrafts(w http.ResponseWriter, r *http.Request) {
	scope, err := h.readScope(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	pending, err := h.service.PreviewClearDrafts(r.Context(), h.companyID(r), scope)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "confirm to delete the drafts", pending)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Confirm(r.Context(), h.companyID(r), chi.URLParam(r, "token"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "confirmed", res)
}

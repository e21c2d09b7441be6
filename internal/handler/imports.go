package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/reconcile"
	"github.com/rotadesk/rota/backend/internal/service"
)

func (h *Handler) StartImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows []domain.RawImportRow `json:"rows" validate:"required,min=1,max=2000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session, err := h.service.StartImport(r.Context(), h.companyID(r), req.Rows)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "rows reconciled", session)
}

func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetImport(r.Context(), h.companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "import fetched", session)
}

func (h *Handler) EditImportRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errorResponse(w, r, "row index must be a number")
		return
	}

	var req struct {
		UserID *string `json:"userId"`
		Date   *string `json:"date"`
		Start  *string `json:"start"`
		End    *string `json:"end"`
		Role   *string `json:"role" validate:"omitempty,max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session, err := h.service.EditImportRow(r.Context(), h.companyID(r), chi.URLParam(r, "id"), index, service.ImportRowEdit{
		UserID: req.UserID,
		Date:   req.Date,
		Start:  req.Start,
		End:    req.End,
		Role:   req.Role,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "row updated", session)
}

func (h *Handler) FillImportEndTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		End string `json:"end" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session, filled, err := h.service.FillImportEndTime(r.Context(), h.companyID(r), chi.URLParam(r, "id"), req.End)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, strconv.Itoa(filled)+" rows filled", session)
}

func (h *Handler) CopyImportDown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index  *int   `json:"index" validate:"required,min=0"`
		Column string `json:"column" validate:"required,oneof=date start end role"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session, err := h.service.CopyImportDown(r.Context(), h.companyID(r), chi.URLParam(r, "id"), *req.Index, reconcile.Column(req.Column))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "value copied down", session)
}

func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID *string `json:"locationId"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.service.CommitImport(r.Context(), h.companyID(r), chi.URLParam(r, "id"), req.LocationID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, strconv.Itoa(len(shifts))+" draft shifts imported", shifts)
}

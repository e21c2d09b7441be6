package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/reconcile"
	"github.com/rotadesk/rota/backend/internal/rota"
	"github.com/rotadesk/rota/backend/internal/service"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusNotFound, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "internal server error",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// userErrors are rejections the operator can act on; their message is shown as is.
var userErrors = []error{
	rota.ErrNothingToCopy,
	rota.ErrEmptyWeek,
	rota.ErrCutoffRequired,
	rota.ErrCutoffNotAfterShift,
	rota.ErrUnknownPattern,
	rota.ErrAlreadyAssigned,
	reconcile.ErrInvalidDates,
	reconcile.ErrAmbiguousRoles,
	reconcile.ErrMissingStartTimes,
	reconcile.ErrNoRows,
	reconcile.ErrRowOutOfRange,
	reconcile.ErrInvalidTime,
	reconcile.ErrInvalidDate,
	reconcile.ErrUnknownColumn,
	reconcile.ErrUnknownUser,
	service.ErrFeatureDisabled,
	service.ErrBiddingDisabled,
	service.ErrConfirmationNotFound,
	service.ErrNotShiftOwner,
	service.ErrNotAssigned,
	service.ErrInvalidRange,
	service.ErrUnknownUser,
	service.ErrUnknownSite,
}

// serviceError maps an error from the service layer onto the response envelope.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var batchErr *service.BatchError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(w, r, "shift not found")
	case errors.Is(err, service.ErrImportNotFound):
		h.notFound(w, r, err.Error())
	case errors.As(err, &batchErr):
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusInternalServerError, Response{
			Success: false,
			Message: batchErr.Error(),
			Data: map[string]int{
				"committed": batchErr.Committed,
				"total":     batchErr.Total,
			},
		})
	default:
		for _, target := range userErrors {
			if errors.Is(err, target) {
				h.errorResponse(w, r, err.Error())
				return
			}
		}
		h.internalServerError(w, r, err)
	}
}

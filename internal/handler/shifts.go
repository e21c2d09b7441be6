package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotadesk/rota/backend/internal/rota"
	"github.com/rotadesk/rota/backend/internal/service"
	"github.com/rotadesk/rota/backend/internal/utils"
)

// days reads YYYY-MM-DD values as midnight in the company zone.
func (h *Handler) days(values ...string) ([]time.Time, error) {
	loc := h.service.Location()
	out := make([]time.Time, len(values))
	for i, value := range values {
		day, err := utils.ParseDay(value, loc)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date like 2025-03-10", value)
		}
		out[i] = day
	}
	return out, nil
}

// GetSchedule returns the collections of a week (?week=YYYY-MM-DD, any day of it) or of
// an explicit range of days (?start=YYYY-MM-DD&end=YYYY-MM-DD, both inclusive).
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loc := h.service.Location()
	query := r.URL.Query()

	var start, end time.Time
	switch {
	case query.Get("week") != "":
		day, err := utils.ParseDay(query.Get("week"), loc)
		if err != nil {
			h.errorResponse(w, r, "week must be a date like 2025-03-10")
			return
		}
		week := rota.WeekOf(day)
		start, end = week.Start, week.End
	case query.Get("start") != "" && query.Get("end") != "":
		first, err := utils.ParseDay(query.Get("start"), loc)
		if err != nil {
			h.errorResponse(w, r, "start must be a date like 2025-03-10")
			return
		}
		last, err := utils.ParseDay(query.Get("end"), loc)
		if err != nil {
			h.errorResponse(w, r, "end must be a date like 2025-03-10")
			return
		}
		start, end = first, rota.EndOfDay(last)
	default:
		week := rota.WeekOf(time.Now().In(loc))
		start, end = week.Start, week.End
	}

	schedule, err := h.service.GetScheduleInRange(r.Context(), h.companyID(r), start, end)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule fetched", map[string]any{
		"schedule": schedule,
		"settings": r.Context().Value(SettingsCtxKey),
	})
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID *string   `json:"locationId"`
		UserID     *string   `json:"userId"`
		Role       string    `json:"role" validate:"max=100"`
		StartTime  time.Time `json:"startTime" validate:"required"`
		EndTime    time.Time `json:"endTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.service.CreateShift(r.Context(), h.companyID(r), service.ShiftInput{
		LocationID: req.LocationID,
		UserID:     req.UserID,
		Role:       req.Role,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift created", shift)
}

// EditShift applies the fields present in the body. An empty locationId or userId clears
// the location or the assignee.
func (h *Handler) EditShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID *string    `json:"locationId"`
		UserID     *string    `json:"userId"`
		Role       *string    `json:"role" validate:"omitempty,max=100"`
		StartTime  *time.Time `json:"startTime"`
		EndTime    *time.Time `json:"endTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.service.EditShift(r.Context(), h.companyID(r), chi.URLParam(r, "id"), service.ShiftEdit{
		LocationID: req.LocationID,
		UserID:     req.UserID,
		Role:       req.Role,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift updated", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShift(r.Context(), h.companyID(r), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}

func (h *Handler) DuplicateShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.service.DuplicateShift(r.Context(), h.companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift duplicated", shift)
}

func (h *Handler) PasteShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date" validate:"required,day"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := h.days(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.service.PasteShift(r.Context(), h.companyID(r), chi.URLParam(r, "id"), days[0])
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift pasted", shift)
}

func (h *Handler) RepeatShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern  string `json:"pattern" validate:"required,oneof=daily_week custom"`
		ViewDate string `json:"viewDate" validate:"omitempty,day"`
		Until    string `json:"until" validate:"omitempty,day"`
		Weekdays []int  `json:"weekdays" validate:"omitempty,max=7,dive,min=0,max=6"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	repeat := service.RepeatRequest{Pattern: rota.RepeatPattern(req.Pattern)}
	if req.ViewDate != "" {
		days, err := h.days(req.ViewDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		repeat.ViewDate = days[0]
	}
	if req.Until != "" {
		days, err := h.days(req.Until)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		repeat.Until = &days[0]
	}
	for _, d := range req.Weekdays {
		repeat.Weekdays = append(repeat.Weekdays, time.Weekday(d))
	}

	res, err := h.service.RepeatShift(r.Context(), h.companyID(r), chi.URLParam(r, "id"), repeat)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift repeated", res)
}

func (h *Handler) DropShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date" validate:"required,day"`
		Mode string `json:"mode" validate:"required,oneof=move copy"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := h.days(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.service.DropShift(r.Context(), h.companyID(r), chi.URLParam(r, "id"), days[0], rota.DropMode(req.Mode))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift dropped", shift)
}

func (h *Handler) PasteDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source" validate:"required,day"`
		Target string `json:"target" validate:"required,day"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := h.days(req.Source, req.Target)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.service.PasteDay(r.Context(), h.companyID(r), days[0], days[1])
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "day pasted", shifts)
}

// PasteWeek takes any day of the source week and any day of the target week.
func (h *Handler) PasteWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source" validate:"required,day"`
		Target string `json:"target" validate:"required,day"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := h.days(req.Source, req.Target)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.service.PasteWeek(r.Context(), h.companyID(r), days[0], days[1])
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "week pasted", shifts)
}

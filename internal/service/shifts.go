package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/rota"
)

var (
	ErrInvalidRange = errors.New("end must be after start")
	ErrUnknownUser  = errors.New("user does not belong to this company")
	ErrUnknownSite  = errors.New("location does not belong to this company")
)

// Schedule is the rota for a window: grouped shifts plus the time off that overlaps it.
type Schedule struct {
	Start         time.Time                `json:"start"`
	End           time.Time                `json:"end"`
	Collections   []*rota.Collection       `json:"collections"`
	TimeOff       []*domain.TimeOffRequest `json:"timeOff"`
	DraftsInRange int                      `json:"draftsInRange"`
}

func (s *Service) GetScheduleInRange(ctx context.Context, companyID string, start, end time.Time) (*Schedule, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	shifts, err := s.store.QueryShifts(ctx, domain.ShiftFilter{
		CompanyID: companyID,
		StartFrom: &start,
		StartTo:   &end,
	})
	if err != nil {
		return nil, err
	}

	timeOff, err := s.dir.GetTimeOffInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	drafts := 0
	for _, sh := range shifts {
		if sh.Status == domain.ShiftStatusDraft {
			drafts++
		}
	}

	collections := rota.Collections(shifts)
	if collections == nil {
		collections = []*rota.Collection{}
	}
	if timeOff == nil {
		timeOff = []*domain.TimeOffRequest{}
	}

	return &Schedule{
		Start:         start,
		End:           end,
		Collections:   collections,
		TimeOff:       timeOff,
		DraftsInRange: drafts,
	}, nil
}

// GetGlobalDraftCount counts every draft of the company regardless of the viewed week.
func (s *Service) GetGlobalDraftCount(ctx context.Context, companyID string) (int, error) {
	return s.store.CountShifts(ctx, rota.DraftFilter(companyID, nil))
}

// ShiftInput is a manually entered shift.
type ShiftInput struct {
	LocationID *string
	UserID     *string
	Role       string
	StartTime  time.Time
	EndTime    time.Time
}

func (s *Service) CreateShift(ctx context.Context, companyID string, in ShiftInput) (*domain.Shift, error) {
	n := rota.NewShift{
		CompanyID: companyID,
		Role:      in.Role,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}

	if in.LocationID != nil && *in.LocationID != "" {
		loc, err := s.location(ctx, companyID, *in.LocationID)
		if err != nil {
			return nil, err
		}
		n.LocationID, n.LocationName = domain.StringPtr(loc.ID), domain.StringPtr(loc.Name)
	}
	if in.UserID != nil && *in.UserID != "" {
		u, err := s.member(ctx, companyID, *in.UserID)
		if err != nil {
			return nil, err
		}
		n.UserID, n.UserName = domain.StringPtr(u.ID), domain.StringPtr(u.FullName)
	}

	sh := n.Build(s.newID)
	sh.CreatedAt = s.now()
	if err := s.store.CreateShift(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// ShiftEdit changes some fields of a shift. Nil leaves a field alone; an empty
// LocationID or UserID clears it.
type ShiftEdit struct {
	LocationID *string
	UserID     *string
	Role       *string
	StartTime  *time.Time
	EndTime    *time.Time
}

func (s *Service) EditShift(ctx context.Context, companyID, id string, edit ShiftEdit) (*domain.Shift, error) {
	sh, err := s.shift(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	var patch domain.ShiftPatch

	if edit.Role != nil {
		role := strings.TrimSpace(*edit.Role)
		if role == "" {
			role = domain.DefaultRole
		}
		patch.Role = domain.Set(role)
	}

	if edit.StartTime != nil || edit.EndTime != nil {
		start, end := sh.StartTime, sh.EndTime
		if edit.StartTime != nil {
			start = *edit.StartTime
		}
		if edit.EndTime != nil {
			end = *edit.EndTime
		} else {
			end = start.Add(sh.Duration())
		}
		patch.StartTime = domain.Set(start)
		patch.EndTime = domain.Set(rota.NormalizeEnd(start, end))
	}

	if edit.LocationID != nil {
		if *edit.LocationID == "" {
			patch.LocationID, patch.LocationName = domain.Remove[string](), domain.Remove[string]()
		} else {
			loc, err := s.location(ctx, companyID, *edit.LocationID)
			if err != nil {
				return nil, err
			}
			patch.LocationID, patch.LocationName = domain.Set(loc.ID), domain.Set(loc.Name)
		}
	}

	if edit.UserID != nil {
		if *edit.UserID == "" {
			patch.UserID, patch.UserName = domain.Remove[string](), domain.Remove[string]()
		} else {
			u, err := s.member(ctx, companyID, *edit.UserID)
			if err != nil {
				return nil, err
			}
			patch.UserID, patch.UserName = domain.Set(u.ID), domain.Set(u.FullName)
		}
	}

	if patch.IsEmpty() {
		return sh, nil
	}
	return s.mutate(ctx, sh, patch)
}

func (s *Service) DeleteShift(ctx context.Context, companyID, id string) error {
	if _, err := s.shift(ctx, companyID, id); err != nil {
		return err
	}
	return s.store.DeleteShift(ctx, id)
}

func (s *Service) DuplicateShift(ctx context.Context, companyID, id string) (*domain.Shift, error) {
	src, err := s.shift(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return s.createOne(ctx, rota.Duplicate(src, s.newID))
}

// PasteShift copies id onto target's calendar day.
func (s *Service) PasteShift(ctx context.Context, companyID, id string, target time.Time) (*domain.Shift, error) {
	src, err := s.shift(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return s.createOne(ctx, rota.PasteShift(src, target.In(s.loc), s.newID))
}

// PasteDay copies every shift starting on sourceDay onto targetDay.
func (s *Service) PasteDay(ctx context.Context, companyID string, sourceDay, targetDay time.Time) ([]*domain.Shift, error) {
	sourceDay = sourceDay.In(s.loc)
	from, to := rota.StartOfDay(sourceDay), rota.EndOfDay(sourceDay)
	shifts, err := s.store.QueryShifts(ctx, domain.ShiftFilter{CompanyID: companyID, StartFrom: &from, StartTo: &to})
	if err != nil {
		return nil, err
	}

	clones, err := rota.PasteDay(shifts, sourceDay, targetDay.In(s.loc), s.newID)
	if err != nil {
		return nil, err
	}
	return s.createAll(ctx, "paste day", clones)
}

// PasteWeek copies the week containing source into the week containing target.
func (s *Service) PasteWeek(ctx context.Context, companyID string, source, target time.Time) ([]*domain.Shift, error) {
	week := rota.WeekOf(source.In(s.loc))
	shifts, err := s.store.QueryShifts(ctx, domain.ShiftFilter{CompanyID: companyID, StartFrom: &week.Start, StartTo: &week.End})
	if err != nil {
		return nil, err
	}

	clones, err := rota.PasteWeek(shifts, week.Start, target.In(s.loc), s.newID)
	if err != nil {
		return nil, err
	}
	return s.createAll(ctx, "paste week", clones)
}

// RepeatRequest describes a recurrence. ViewDate is any day of the week on screen.
type RepeatRequest struct {
	Pattern  rota.RepeatPattern
	ViewDate time.Time
	Until    *time.Time
	Weekdays []time.Weekday
}

type RepeatResult struct {
	Shifts  []*domain.Shift `json:"shifts"`
	Warning string          `json:"warning,omitempty"`
}

const warnAllWeekdays = "no weekdays selected, repeating on every day"

func (s *Service) RepeatShift(ctx context.Context, companyID, id string, req RepeatRequest) (*RepeatResult, error) {
	src, err := s.shift(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	// calendar days are counted in the company zone, not in the zone the store returned
	src = src.Copy()
	src.StartTime = src.StartTime.In(s.loc)
	src.EndTime = src.EndTime.In(s.loc)

	view := req.ViewDate
	if view.IsZero() {
		view = src.StartTime
	}
	opts := rota.RepeatOptions{
		Pattern:    req.Pattern,
		ViewedWeek: rota.WeekOf(view.In(s.loc)),
		Until:      req.Until,
		Weekdays:   req.Weekdays,
	}

	clones, err := rota.Repeat(src, opts, s.newID)
	if err != nil {
		return nil, err
	}

	res := &RepeatResult{Shifts: []*domain.Shift{}}
	if opts.DefaultsToAllDays() {
		res.Warning = warnAllWeekdays
	}
	if len(clones) == 0 {
		return res, nil
	}

	if res.Shifts, err = s.createAll(ctx, "repeat", clones); err != nil {
		return nil, err
	}
	return res, nil
}

// DropShift relocates id onto newDate, or leaves it alone and drops a copy there.
func (s *Service) DropShift(ctx context.Context, companyID, id string, newDate time.Time, mode rota.DropMode) (*domain.Shift, error) {
	src, err := s.shift(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	newDate = newDate.In(s.loc)

	if mode == rota.DropCopy {
		return s.createOne(ctx, rota.DropCopyOf(src, newDate, s.newID))
	}
	return s.mutate(ctx, src, rota.MovePatch(src, newDate))
}

func (s *Service) createOne(ctx context.Context, sh *domain.Shift) (*domain.Shift, error) {
	sh.CreatedAt = s.now()
	if err := s.store.CreateShift(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) member(ctx context.Context, companyID, userID string) (*domain.User, error) {
	u, err := s.dir.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if u.CompanyID != companyID {
		return nil, ErrUnknownUser
	}
	return u, nil
}

func (s *Service) location(ctx context.Context, companyID, id string) (*domain.Location, error) {
	loc, err := s.dir.GetLocationByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnknownSite
		}
		return nil, err
	}
	if loc.CompanyID != companyID {
		return nil, ErrUnknownSite
	}
	return loc, nil
}

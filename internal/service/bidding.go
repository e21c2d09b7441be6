package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/rota"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID    string
	CompanyID string
	Role      domain.Role
}

func (a Actor) IsManager() bool {
	return a.Role == domain.RoleManager || a.Role == domain.RoleAdmin
}

func (s *Service) biddingAllowed(ctx context.Context, companyID string) error {
	settings, err := s.Settings(ctx, companyID)
	if err != nil {
		return err
	}
	if !settings.AllowShiftBidding {
		return ErrBiddingDisabled
	}
	return nil
}

// Bid adds the actor to the shift's bid set. Bidding twice changes nothing.
func (s *Service) Bid(ctx context.Context, actor Actor, shiftID string) (*domain.Shift, error) {
	if err := s.biddingAllowed(ctx, actor.CompanyID); err != nil {
		return nil, err
	}
	sh, err := s.shift(ctx, actor.CompanyID, shiftID)
	if err != nil {
		return nil, err
	}
	if sh.HasBid(actor.UserID) {
		return sh, nil
	}
	return s.touch(ctx, sh, domain.ShiftPatch{Bids: domain.Set(rota.AddBid(sh.Bids, actor.UserID))})
}

func (s *Service) CancelBid(ctx context.Context, actor Actor, shiftID string) (*domain.Shift, error) {
	if err := s.biddingAllowed(ctx, actor.CompanyID); err != nil {
		return nil, err
	}
	sh, err := s.shift(ctx, actor.CompanyID, shiftID)
	if err != nil {
		return nil, err
	}
	if !sh.HasBid(actor.UserID) {
		return sh, nil
	}
	return s.touch(ctx, sh, domain.ShiftPatch{Bids: domain.Set(rota.RemoveBid(sh.Bids, actor.UserID))})
}

// Offer advertises an assigned shift for swap, or withdraws the offer. The assignee
// keeps the shift until someone else is assigned.
func (s *Service) Offer(ctx context.Context, actor Actor, shiftID string, offered bool) (*domain.Shift, error) {
	if err := s.biddingAllowed(ctx, actor.CompanyID); err != nil {
		return nil, err
	}
	sh, err := s.shift(ctx, actor.CompanyID, shiftID)
	if err != nil {
		return nil, err
	}
	if !sh.IsAssigned() {
		return nil, ErrNotAssigned
	}
	if !actor.IsManager() && *sh.UserID != actor.UserID {
		return nil, ErrNotShiftOwner
	}
	return s.touch(ctx, sh, domain.ShiftPatch{IsOffered: domain.Set(offered)})
}

// AssignPreview is what the operator confirms before an assignment is written.
type AssignPreview struct {
	Pending
	Shift          *domain.Shift            `json:"shift"`
	User           *domain.User             `json:"user"`
	TimeOff        []*domain.TimeOffRequest `json:"timeOff"`
	DoubleBookings []*domain.Shift          `json:"doubleBookings"`
}

// PreviewAssign checks an assignment and returns a confirmation token for it. Time off
// and overlapping shifts of the user are surfaced, not enforced.
func (s *Service) PreviewAssign(ctx context.Context, companyID, shiftID, userID string) (*AssignPreview, error) {
	sh, err := s.shift(ctx, companyID, shiftID)
	if err != nil {
		return nil, err
	}
	u, err := s.member(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if sh.UserID != nil && *sh.UserID == u.ID {
		return nil, rota.ErrAlreadyAssigned
	}

	timeOff, err := s.dir.GetTimeOffInRange(ctx, companyID, sh.StartTime, sh.EndTime)
	if err != nil {
		return nil, err
	}

	// a shift overlapping sh starts no earlier than a day before it
	from, to := sh.StartTime.Add(-24*time.Hour), sh.EndTime
	theirs, err := s.store.QueryShifts(ctx, domain.ShiftFilter{CompanyID: companyID, UserID: u.ID, StartFrom: &from, StartTo: &to})
	if err != nil {
		return nil, err
	}

	pending, err := s.pend(ctx, confirmation{Action: ActionAssign, CompanyID: companyID, ShiftID: sh.ID, UserID: u.ID}, 1)
	if err != nil {
		return nil, err
	}

	conflicts := rota.TimeOffConflicts(sh, u.ID, timeOff)
	if conflicts == nil {
		conflicts = []*domain.TimeOffRequest{}
	}
	double := rota.DoubleBookings(sh, u.ID, theirs)
	if double == nil {
		double = []*domain.Shift{}
	}

	return &AssignPreview{
		Pending:        *pending,
		Shift:          sh,
		User:           u,
		TimeOff:        conflicts,
		DoubleBookings: double,
	}, nil
}

func (s *Service) assign(ctx context.Context, c confirmation) (*ConfirmResult, error) {
	target, err := s.shift(ctx, c.CompanyID, c.ShiftID)
	if err != nil {
		return nil, err
	}
	u, err := s.member(ctx, c.CompanyID, c.UserID)
	if err != nil {
		return nil, err
	}

	// siblings share the exact start time
	start := target.StartTime
	pool, err := s.store.QueryShifts(ctx, domain.ShiftFilter{CompanyID: c.CompanyID, StartFrom: &start, StartTo: &start})
	if err != nil {
		return nil, err
	}

	updates, err := rota.PlanAssignment(target, rota.Assignee{UserID: u.ID, UserName: u.FullName}, pool)
	if err != nil {
		return nil, err
	}
	n, err := s.store.BatchUpdateShifts(ctx, updates)
	if err != nil {
		return nil, batchErr("assign", n, len(updates), err)
	}

	assigned := target.Copy()
	updates[0].Patch.Apply(assigned)
	s.notifyAssigned(ctx, u, assigned)

	return &ConfirmResult{Action: ActionAssign, Affected: len(updates), Shift: assigned}, nil
}

// Unassign reopens a shift.
func (s *Service) Unassign(ctx context.Context, companyID, shiftID string) (*domain.Shift, error) {
	sh, err := s.shift(ctx, companyID, shiftID)
	if err != nil {
		return nil, err
	}
	if !sh.IsAssigned() {
		return nil, ErrNotAssigned
	}
	return s.mutate(ctx, sh, rota.UnassignPatch())
}

func (s *Service) notifyAssigned(ctx context.Context, u *domain.User, sh *domain.Shift) {
	if s.notifier == nil || u.Email == "" {
		return
	}

	location := ""
	if sh.LocationName != nil {
		location = *sh.LocationName
	}
	msg := domain.MailMessage{
		Type: domain.MailTypeShiftAssigned,
		To:   u.Email,
		Data: domain.ShiftAssignedMailData{
			FullName: u.FullName,
			Role:     sh.Role,
			Location: location,
			Start:    sh.StartTime.In(s.loc).Format(mailTimeLayout),
			End:      sh.EndTime.In(s.loc).Format(mailTimeLayout),
		},
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		slog.Warn("failed to queue assignment mail", "user", u.ID, "shift", sh.ID, "error", err)
	}
}

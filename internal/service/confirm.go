package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/rota"
)

const mailTimeLayout = "Mon 2 Jan 15:04"

// Action names an operation that waits for operator confirmation.
type Action string

const (
	ActionPublish     Action = "publish"
	ActionClearDrafts Action = "clear_drafts"
	ActionAssign      Action = "assign"
)

// Pending is a previewed operation: Count records will be affected once Token is confirmed.
type Pending struct {
	Token  string `json:"token"`
	Action Action `json:"action"`
	Count  int    `json:"count"`
}

type ConfirmResult struct {
	Action   Action        `json:"action"`
	Affected int           `json:"affected"`
	Shift    *domain.Shift `json:"shift,omitempty"`
}

type confirmation struct {
	Action    Action      `json:"action"`
	CompanyID string      `json:"companyId"`
	Scope     *rota.Scope `json:"scope,omitempty"`
	ShiftID   string      `json:"shiftId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
}

func confirmationKey(token string) string {
	return "confirmation:" + token
}

func (s *Service) pend(ctx context.Context, c confirmation, count int) (*Pending, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	if err := s.cache.Set(ctx, confirmationKey(token), payload, s.confirmationTTL); err != nil {
		return nil, err
	}
	return &Pending{Token: token, Action: c.Action, Count: count}, nil
}

// PreviewPublish counts the drafts a publish of scope would affect. A nil scope means
// every draft of the company.
func (s *Service) PreviewPublish(ctx context.Context, companyID string, scope *rota.Scope) (*Pending, error) {
	n, err := s.store.CountShifts(ctx, rota.DraftFilter(companyID, scope))
	if err != nil {
		return nil, err
	}
	return s.pend(ctx, confirmation{Action: ActionPublish, CompanyID: companyID, Scope: scope}, n)
}

// PreviewClearDrafts counts the drafts clearing scope would delete.
func (s *Service) PreviewClearDrafts(ctx context.Context, companyID string, scope *rota.Scope) (*Pending, error) {
	n, err := s.store.CountShifts(ctx, rota.DraftFilter(companyID, scope))
	if err != nil {
		return nil, err
	}
	return s.pend(ctx, confirmation{Action: ActionClearDrafts, CompanyID: companyID, Scope: scope}, n)
}

// Confirm executes a previewed operation. A token works once and only for the company
// that requested it.
func (s *Service) Confirm(ctx context.Context, companyID, token string) (*ConfirmResult, error) {
	payload, err := s.cache.Take(ctx, confirmationKey(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}

	var c confirmation
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, err
	}
	if c.CompanyID != companyID {
		return nil, ErrConfirmationNotFound
	}

	switch c.Action {
	case ActionPublish:
		return s.publish(ctx, c)
	case ActionClearDrafts:
		return s.clearDrafts(ctx, c)
	case ActionAssign:
		return s.assign(ctx, c)
	default:
		return nil, ErrConfirmationNotFound
	}
}

func (s *Service) publish(ctx context.Context, c confirmation) (*ConfirmResult, error) {
	drafts, err := s.store.QueryShifts(ctx, rota.DraftFilter(c.CompanyID, c.Scope))
	if err != nil {
		return nil, err
	}

	updates := rota.PlanPublish(drafts)
	n, err := s.store.BatchUpdateShifts(ctx, updates)
	if err != nil {
		return nil, batchErr("publish", n, len(updates), err)
	}

	s.notifyPublished(ctx, drafts)
	return &ConfirmResult{Action: ActionPublish, Affected: n}, nil
}

func (s *Service) clearDrafts(ctx context.Context, c confirmation) (*ConfirmResult, error) {
	drafts, err := s.store.QueryShifts(ctx, rota.DraftFilter(c.CompanyID, c.Scope))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.ID)
	}
	n, err := s.store.BatchDeleteShifts(ctx, ids)
	if err != nil {
		return nil, batchErr("clear drafts", n, len(ids), err)
	}
	return &ConfirmResult{Action: ActionClearDrafts, Affected: n}, nil
}

// notifyPublished sends one mail per assignee listing their newly published shifts.
func (s *Service) notifyPublished(ctx context.Context, published []*domain.Shift) {
	if s.notifier == nil {
		return
	}

	byUser := make(map[string][]*domain.Shift)
	for _, sh := range published {
		if sh.IsAssigned() {
			byUser[*sh.UserID] = append(byUser[*sh.UserID], sh)
		}
	}

	for userID, shifts := range byUser {
		u, err := s.dir.GetUserByID(ctx, userID)
		if err != nil {
			slog.Warn("failed to load assignee for publish mail", "user", userID, "error", err)
			continue
		}
		if u.Email == "" {
			continue
		}

		sort.Slice(shifts, func(i, j int) bool { return shifts[i].StartTime.Before(shifts[j].StartTime) })
		msg := domain.MailMessage{
			Type: domain.MailTypeRotaPublished,
			To:   u.Email,
			Data: domain.RotaPublishedMailData{
				FullName:   u.FullName,
				ShiftCount: len(shifts),
				FirstShift: shifts[0].StartTime.In(s.loc).Format(mailTimeLayout),
			},
		}
		if err := s.notifier.Notify(ctx, msg); err != nil {
			slog.Warn("failed to queue publish mail", "user", userID, "error", err)
		}
	}
}

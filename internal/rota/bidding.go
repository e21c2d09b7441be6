package rota

import (
	"github.com/rotadesk/rota/backend/internal/domain"
)

type BidState string

const (
	StateOpen       BidState = "open"
	StateBidPending BidState = "bid_pending"
	StateAssigned   BidState = "assigned"
)

func StateOf(s *domain.Shift) BidState {
	switch {
	case s.IsAssigned():
		return StateAssigned
	case len(s.Bids) > 0:
		return StateBidPending
	default:
		return StateOpen
	}
}

// AddBid returns bids with userID added. Bids are a set: adding twice is a no-op.
func AddBid(bids []string, userID string) []string {
	out := make([]string, 0, len(bids)+1)
	seen := make(map[string]bool, len(bids)+1)
	for _, b := range bids {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	if !seen[userID] {
		out = append(out, userID)
	}
	return out
}

// RemoveBid returns bids without userID.
func RemoveBid(bids []string, userID string) []string {
	out := make([]string, 0, len(bids))
	for _, b := range bids {
		if b != userID {
			out = append(out, b)
		}
	}
	return out
}

// Assignee is the user receiving a shift, with the name snapshot stored on the shift.
type Assignee struct {
	UserID   string
	UserName string
}

// PlanAssignment returns the updates that place assignee on target: the target is
// assigned, loses its bids and offer flag and goes back to draft; every sibling slot in the
// same group that holds a bid from the assignee loses that bid and nothing else.
func PlanAssignment(target *domain.Shift, assignee Assignee, pool []*domain.Shift) ([]domain.ShiftUpdate, error) {
	if target.UserID != nil && *target.UserID == assignee.UserID {
		return nil, ErrAlreadyAssigned
	}

	updates := []domain.ShiftUpdate{{
		ID: target.ID,
		Patch: domain.ShiftPatch{
			UserID:    domain.Set(assignee.UserID),
			UserName:  domain.Set(assignee.UserName),
			Bids:      domain.Set([]string{}),
			IsOffered: domain.Set(false),
		}.Redraft(),
	}}

	for _, sibling := range Siblings(target, pool) {
		if !sibling.HasBid(assignee.UserID) {
			continue
		}
		updates = append(updates, domain.ShiftUpdate{
			ID: sibling.ID,
			Patch: domain.ShiftPatch{
				Bids: domain.Set(RemoveBid(sibling.Bids, assignee.UserID)),
			},
		})
	}

	return updates, nil
}

// UnassignPatch reopens a shift. The assignee fields are removed rather than nulled.
func UnassignPatch() domain.ShiftPatch {
	return domain.ShiftPatch{
		UserID:    domain.Remove[string](),
		UserName:  domain.Remove[string](),
		IsOffered: domain.Set(false),
	}.Redraft()
}

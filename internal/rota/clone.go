package rota

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotadesk/rota/backend/internal/domain"
)

// IDGenerator mints shift ids. Ids are supplied by the caller at creation time.
type IDGenerator func() string

// NewShiftID combines the creation millisecond with a random suffix so that shifts minted
// in the same millisecond by one batch never collide.
func NewShiftID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), suffix)
}

// Clone copies role and location metadata from src onto a new draft starting at start.
// Assignment state never propagates: no user, no bids, not offered.
func Clone(src *domain.Shift, start time.Time, newID IDGenerator) *domain.Shift {
	return &domain.Shift{
		ID:           newID(),
		CompanyID:    src.CompanyID,
		LocationID:   copyOptional(src.LocationID),
		LocationName: copyOptional(src.LocationName),
		Role:         src.Role,
		StartTime:    start,
		EndTime:      start.Add(src.Duration()),
		Status:       domain.ShiftStatusDraft,
		Bids:         []string{},
		IsOffered:    false,
	}
}

func copyOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewShift describes a manually entered shift.
type NewShift struct {
	CompanyID    string
	LocationID   *string
	LocationName *string
	UserID       *string
	UserName     *string
	Role         string
	StartTime    time.Time
	EndTime      time.Time
}

// Build turns a manual entry into a draft. An end at or before start is an overnight
// shift and rolls to the next day; an empty role becomes the default role.
func (n NewShift) Build(newID IDGenerator) *domain.Shift {
	role := strings.TrimSpace(n.Role)
	if role == "" {
		role = domain.DefaultRole
	}
	return &domain.Shift{
		ID:           newID(),
		CompanyID:    n.CompanyID,
		LocationID:   n.LocationID,
		LocationName: n.LocationName,
		UserID:       n.UserID,
		UserName:     n.UserName,
		Role:         role,
		StartTime:    n.StartTime,
		EndTime:      NormalizeEnd(n.StartTime, n.EndTime),
		Status:       domain.ShiftStatusDraft,
		Bids:         []string{},
	}
}

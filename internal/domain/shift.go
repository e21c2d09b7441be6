package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
)

// DefaultRole is used whenever a shift is created without a specific position.
const DefaultRole = "Staff"

type Shift struct {
	ID           string      `json:"id" bson:"_id"`
	CompanyID    string      `json:"companyId" bson:"company_id"`
	LocationID   *string     `json:"locationId,omitempty" bson:"location_id,omitempty"`
	LocationName *string     `json:"locationName,omitempty" bson:"location_name,omitempty"`
	UserID       *string     `json:"userId" bson:"user_id,omitempty"` // nil means an open shift
	UserName     *string     `json:"userName,omitempty" bson:"user_name,omitempty"`
	Role         string      `json:"role" bson:"role"`
	StartTime    time.Time   `json:"startTime" bson:"start_time"`
	EndTime      time.Time   `json:"endTime" bson:"end_time"`
	Status       ShiftStatus `json:"status" bson:"status"`
	Bids         []string    `json:"bids" bson:"bids"`
	IsOffered    bool        `json:"isOffered" bson:"is_offered"`
	CreatedAt    time.Time   `json:"createdAt" bson:"created_at"`
}

func (s *Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s *Shift) IsAssigned() bool {
	return s.UserID != nil && *s.UserID != ""
}

func (s *Shift) HasBid(userID string) bool {
	for _, b := range s.Bids {
		if b == userID {
			return true
		}
	}
	return false
}

// Copy returns a deep copy so callers can mutate the result without touching the source.
func (s *Shift) Copy() *Shift {
	c := *s
	c.LocationID = copyString(s.LocationID)
	c.LocationName = copyString(s.LocationName)
	c.UserID = copyString(s.UserID)
	c.UserName = copyString(s.UserName)
	c.Bids = append([]string{}, s.Bids...)
	return &c
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}

// ShiftFilter selects shifts for query, count and bulk operations. Zero values mean "no constraint".
type ShiftFilter struct {
	CompanyID string
	Status    ShiftStatus
	StartFrom *time.Time // inclusive
	StartTo   *time.Time // inclusive
	UserID    string
	IDs       []string
	Limit     int
}

func (f ShiftFilter) Matches(s *Shift) bool {
	if f.CompanyID != "" && s.CompanyID != f.CompanyID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.StartFrom != nil && s.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && s.StartTime.After(*f.StartTo) {
		return false
	}
	if f.UserID != "" && (s.UserID == nil || *s.UserID != f.UserID) {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == s.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

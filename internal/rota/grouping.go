package rota

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

const nilLocationKey = "nil"

// GroupKey identifies interchangeable slots: same role, same start and end, same location.
func GroupKey(s *domain.Shift) string {
	loc := nilLocationKey
	if s.LocationID != nil {
		loc = *s.LocationID
	}
	return fmt.Sprintf("%s_%d_%d_%s", s.Role, s.StartTime.UnixMilli(), s.EndTime.UnixMilli(), loc)
}

type Fill string

const (
	FillEmpty   Fill = "empty"
	FillPartial Fill = "partial"
	FillFull    Fill = "full"
)

// Collection is a set of shifts sharing a group key, rendered as one card.
type Collection struct {
	Key          string          `json:"key"`
	Role         string          `json:"role"`
	LocationID   *string         `json:"locationId,omitempty"`
	LocationName *string         `json:"locationName,omitempty"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      time.Time       `json:"endTime"`
	Shifts       []*domain.Shift `json:"shifts"`
}

func (c *Collection) Total() int {
	return len(c.Shifts)
}

func (c *Collection) Assigned() int {
	n := 0
	for _, s := range c.Shifts {
		if s.IsAssigned() {
			n++
		}
	}
	return n
}

func (c *Collection) Fill() Fill {
	switch assigned := c.Assigned(); {
	case assigned == 0:
		return FillEmpty
	case assigned == c.Total():
		return FillFull
	default:
		return FillPartial
	}
}

// MarshalJSON adds the counts a collapsed card shows.
func (c *Collection) MarshalJSON() ([]byte, error) {
	type plain Collection
	return json.Marshal(struct {
		*plain
		Assigned int  `json:"assigned"`
		Total    int  `json:"total"`
		Fill     Fill `json:"fill"`
	}{(*plain)(c), c.Assigned(), c.Total(), c.Fill()})
}

// GroupShifts partitions shifts by group key. Shifts within a group keep encounter order.
func GroupShifts(shifts []*domain.Shift) map[string][]*domain.Shift {
	groups := make(map[string][]*domain.Shift)
	for _, s := range shifts {
		key := GroupKey(s)
		groups[key] = append(groups[key], s)
	}
	return groups
}

// Collections is GroupShifts with groups ordered by first encounter.
func Collections(shifts []*domain.Shift) []*Collection {
	index := make(map[string]*Collection)
	var out []*Collection
	for _, s := range shifts {
		key := GroupKey(s)
		c, ok := index[key]
		if !ok {
			c = &Collection{
				Key:          key,
				Role:         s.Role,
				LocationID:   s.LocationID,
				LocationName: s.LocationName,
				StartTime:    s.StartTime,
				EndTime:      s.EndTime,
			}
			index[key] = c
			out = append(out, c)
		}
		c.Shifts = append(c.Shifts, s)
	}
	return out
}

// Siblings returns the other members of target's group found in pool.
func Siblings(target *domain.Shift, pool []*domain.Shift) []*domain.Shift {
	key := GroupKey(target)
	var out []*domain.Shift
	for _, s := range pool {
		if s.ID == target.ID {
			continue
		}
		if GroupKey(s) == key {
			out = append(out, s)
		}
	}
	return out
}

// ShiftsOnDay returns the shifts that start on day's calendar date.
func ShiftsOnDay(shifts []*domain.Shift, day time.Time) []*domain.Shift {
	var out []*domain.Shift
	for _, s := range shifts {
		if SameDay(day, s.StartTime) {
			out = append(out, s)
		}
	}
	return out
}

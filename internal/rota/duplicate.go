package rota

import (
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

// Duplicate adds another identical slot next to src.
func Duplicate(src *domain.Shift, newID IDGenerator) *domain.Shift {
	return Clone(src, src.StartTime, newID)
}

// PasteShift places a copy of src on target's date, keeping src's time of day and duration.
func PasteShift(src *domain.Shift, target time.Time, newID IDGenerator) *domain.Shift {
	target = target.In(src.StartTime.Location())
	return Clone(src, AtTimeOfDay(target, src.StartTime), newID)
}

// PasteDay copies every shift that starts on sourceDay onto target, each keeping its own
// time of day. Overnight shifts keep ending on the following day.
func PasteDay(shifts []*domain.Shift, sourceDay, target time.Time, newID IDGenerator) ([]*domain.Shift, error) {
	onDay := ShiftsOnDay(shifts, sourceDay)
	if len(onDay) == 0 {
		return nil, ErrNothingToCopy
	}

	out := make([]*domain.Shift, 0, len(onDay))
	for _, s := range onDay {
		out = append(out, PasteShift(s, target, newID))
	}
	return out, nil
}

// PasteWeek shifts every shift of source into the week containing target by the fixed
// offset between the two week starts.
func PasteWeek(shifts []*domain.Shift, source, target time.Time, newID IDGenerator) ([]*domain.Shift, error) {
	from := WeekOf(source)
	to := WeekOf(target.In(source.Location()))
	offset := to.Start.Sub(from.Start)

	var out []*domain.Shift
	for _, s := range shifts {
		if !from.Contains(s.StartTime) {
			continue
		}
		out = append(out, Clone(s, s.StartTime.Add(offset), newID))
	}

	if len(out) == 0 {
		return nil, ErrEmptyWeek
	}
	return out, nil
}

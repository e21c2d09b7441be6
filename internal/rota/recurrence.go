package rota

import (
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

type RepeatPattern string

const (
	// RepeatDailyWeek fills every remaining day of the viewed week.
	RepeatDailyWeek RepeatPattern = "daily_week"
	// RepeatCustom walks to an explicit cutoff, optionally on selected weekdays only.
	RepeatCustom RepeatPattern = "custom"
)

type RepeatOptions struct {
	Pattern RepeatPattern
	// ViewedWeek bounds RepeatDailyWeek.
	ViewedWeek Week
	// Until is the inclusive cutoff date for RepeatCustom.
	Until *time.Time
	// Weekdays restricts RepeatCustom; empty means all seven days.
	Weekdays []time.Weekday
}

// DefaultsToAllDays reports the "no weekdays selected" warning case.
func (o RepeatOptions) DefaultsToAllDays() bool {
	return o.Pattern == RepeatCustom && len(o.Weekdays) == 0
}

// Repeat expands src into one draft per qualifying day after src's date, keeping the
// time of day and the exact duration of src.
func Repeat(src *domain.Shift, opts RepeatOptions, newID IDGenerator) ([]*domain.Shift, error) {
	first := StartOfDay(src.StartTime).AddDate(0, 0, 1)

	var last time.Time
	include := func(time.Weekday) bool { return true }

	switch opts.Pattern {
	case RepeatDailyWeek:
		last = StartOfDay(opts.ViewedWeek.End.In(src.StartTime.Location()))
	case RepeatCustom:
		if opts.Until == nil || opts.Until.IsZero() {
			return nil, ErrCutoffRequired
		}
		last = StartOfDay(opts.Until.In(src.StartTime.Location()))
		if !last.After(StartOfDay(src.StartTime)) {
			return nil, ErrCutoffNotAfterShift
		}
		if len(opts.Weekdays) > 0 {
			days := make(map[time.Weekday]bool, len(opts.Weekdays))
			for _, d := range opts.Weekdays {
				days[d] = true
			}
			include = func(d time.Weekday) bool { return days[d] }
		}
	default:
		return nil, ErrUnknownPattern
	}

	var out []*domain.Shift
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !include(day.Weekday()) {
			continue
		}
		out = append(out, Clone(src, AtTimeOfDay(day, src.StartTime), newID))
	}

	return out, nil
}

// Package rota holds the scheduling rules: shift grouping, cloning, recurrence,
// copy/paste, drag relocation, bidding and publishing. Everything here is pure; the
// service package persists the results.
package rota

import "time"

// Week runs from Monday 00:00:00.000 to the following Sunday 23:59:59.999.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf walks back from ref to the most recent Monday, in ref's location.
func WeekOf(ref time.Time) Week {
	day := StartOfDay(ref)
	// time.Weekday starts on Sunday, ISO weeks start on Monday
	back := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -back)
	return Week{
		Start: start,
		End:   start.AddDate(0, 0, 7).Add(-time.Millisecond),
	}
}

func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days lists the seven midnights of the week.
func (w Week) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// AtTimeOfDay puts tod's hour/minute/second on date's calendar day.
func AtTimeOfDay(date, tod time.Time) time.Time {
	tod = tod.In(date.Location())
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), date.Location())
}

// NormalizeEnd rolls an end that is not after start onto the next calendar day.
func NormalizeEnd(start, end time.Time) time.Time {
	for !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// ClockTime builds an instant on date's day from an "HH:mm" string.
func ClockTime(date time.Time, hhmm string) (time.Time, error) {
	tod, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, date.Location()), nil
}

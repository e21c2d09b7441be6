package rota

import (
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// TimeOffConflicts lists userID's non-rejected time-off requests overlapping shift.
func TimeOffConflicts(shift *domain.Shift, userID string, requests []*domain.TimeOffRequest) []*domain.TimeOffRequest {
	var out []*domain.TimeOffRequest
	for _, r := range requests {
		if r.UserID != userID || r.Status == domain.TimeOffRejected {
			continue
		}
		if Overlap(shift.StartTime, shift.EndTime, r.StartTime, r.EndTime) {
			out = append(out, r)
		}
	}
	return out
}

// DoubleBookings lists userID's other shifts overlapping shift.
func DoubleBookings(shift *domain.Shift, userID string, pool []*domain.Shift) []*domain.Shift {
	var out []*domain.Shift
	for _, s := range pool {
		if s.ID == shift.ID || s.UserID == nil || *s.UserID != userID {
			continue
		}
		if Overlap(shift.StartTime, shift.EndTime, s.StartTime, s.EndTime) {
			out = append(out, s)
		}
	}
	return out
}

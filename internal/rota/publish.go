package rota

import (
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

// Scope limits publish and clear-drafts to shifts starting inside [Start, End]. A nil
// scope covers every draft of the company.
type Scope struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func WeekScope(w Week) *Scope {
	return &Scope{Start: w.Start, End: w.End}
}

// DraftFilter selects the drafts of companyID inside scope.
func DraftFilter(companyID string, scope *Scope) domain.ShiftFilter {
	f := domain.ShiftFilter{
		CompanyID: companyID,
		Status:    domain.ShiftStatusDraft,
	}
	if scope != nil {
		start, end := scope.Start, scope.End
		f.StartFrom = &start
		f.StartTo = &end
	}
	return f
}

// PlanPublish moves every draft in shifts to published. Publishing is the only transition
// to published and does not go through Redraft.
func PlanPublish(shifts []*domain.Shift) []domain.ShiftUpdate {
	updates := make([]domain.ShiftUpdate, 0, len(shifts))
	for _, s := range shifts {
		if s.Status != domain.ShiftStatusDraft {
			continue
		}
		updates = append(updates, domain.ShiftUpdate{
			ID:    s.ID,
			Patch: domain.ShiftPatch{Status: domain.Set(domain.ShiftStatusPublished)},
		})
	}
	return updates
}

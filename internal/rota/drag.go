package rota

import (
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

type DropMode string

const (
	DropMove DropMode = "move"
	DropCopy DropMode = "copy"
)

// DropOffset is the shift applied to both ends when src is dropped on newDate.
func DropOffset(src *domain.Shift, newDate time.Time) time.Duration {
	newDate = newDate.In(src.StartTime.Location())
	return AtTimeOfDay(newDate, src.StartTime).Sub(src.StartTime)
}

// MovePatch relocates src to newDate. The caller persists it as a schedule mutation,
// which puts the shift back into draft.
func MovePatch(src *domain.Shift, newDate time.Time) domain.ShiftPatch {
	offset := DropOffset(src, newDate)
	return domain.ShiftPatch{
		StartTime: domain.Set(src.StartTime.Add(offset)),
		EndTime:   domain.Set(src.EndTime.Add(offset)),
	}.Redraft()
}

// DropCopyOf leaves src untouched and returns a draft clone on newDate.
func DropCopyOf(src *domain.Shift, newDate time.Time, newID IDGenerator) *domain.Shift {
	offset := DropOffset(src, newDate)
	return Clone(src, src.StartTime.Add(offset), newID)
}

package domain

import "time"

type FieldOp int

const (
	FieldKeep   FieldOp = iota // leave untouched
	FieldSet                   // set to Value
	FieldNull                  // explicitly null
	FieldRemove                // drop the field from the document
)

// Field is one entry of a partial update. Removing a field and setting it to null are
// different operations for document stores; relational stores treat both as NULL.
type Field[T any] struct {
	Op    FieldOp
	Value T
}

func Set[T any](v T) Field[T] {
	return Field[T]{Op: FieldSet, Value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{Op: FieldNull}
}

func Remove[T any]() Field[T] {
	return Field[T]{Op: FieldRemove}
}

func (f Field[T]) IsKeep() bool {
	return f.Op == FieldKeep
}

// Clears reports whether the field ends up absent or null after the update.
func (f Field[T]) Clears() bool {
	return f.Op == FieldNull || f.Op == FieldRemove
}

type ShiftPatch struct {
	LocationID   Field[string]
	LocationName Field[string]
	UserID       Field[string]
	UserName     Field[string]
	Role         Field[string]
	StartTime    Field[time.Time]
	EndTime      Field[time.Time]
	Status       Field[ShiftStatus]
	Bids         Field[[]string]
	IsOffered    Field[bool]
}

// Redraft forces the shift back to draft. Every schedule-altering write goes through it;
// only publishing moves a shift to published.
func (p ShiftPatch) Redraft() ShiftPatch {
	p.Status = Set(ShiftStatusDraft)
	return p
}

func (p ShiftPatch) IsEmpty() bool {
	return p.LocationID.IsKeep() && p.LocationName.IsKeep() && p.UserID.IsKeep() &&
		p.UserName.IsKeep() && p.Role.IsKeep() && p.StartTime.IsKeep() && p.EndTime.IsKeep() &&
		p.Status.IsKeep() && p.Bids.IsKeep() && p.IsOffered.IsKeep()
}

// Apply writes the patch onto s in place. Stores that keep shifts in memory use it, and the
// service uses it to echo the updated record back to callers.
func (p ShiftPatch) Apply(s *Shift) {
	applyString(&s.LocationID, p.LocationID)
	applyString(&s.LocationName, p.LocationName)
	applyString(&s.UserID, p.UserID)
	applyString(&s.UserName, p.UserName)
	if p.Role.Op == FieldSet {
		s.Role = p.Role.Value
	}
	if p.StartTime.Op == FieldSet {
		s.StartTime = p.StartTime.Value
	}
	if p.EndTime.Op == FieldSet {
		s.EndTime = p.EndTime.Value
	}
	if p.Status.Op == FieldSet {
		s.Status = p.Status.Value
	}
	switch p.Bids.Op {
	case FieldSet:
		s.Bids = append([]string{}, p.Bids.Value...)
	case FieldNull, FieldRemove:
		s.Bids = []string{}
	}
	switch p.IsOffered.Op {
	case FieldSet:
		s.IsOffered = p.IsOffered.Value
	case FieldNull, FieldRemove:
		s.IsOffered = false
	}
}

func applyString(dst **string, f Field[string]) {
	switch f.Op {
	case FieldSet:
		v := f.Value
		*dst = &v
	case FieldNull, FieldRemove:
		*dst = nil
	}
}

// ShiftUpdate pairs a shift id with the patch to apply in a batch update.
type ShiftUpdate struct {
	ID    string
	Patch ShiftPatch
}

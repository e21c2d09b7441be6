package reconcile

import (
	"strings"

	"github.com/rotadesk/rota/backend/internal/domain"
)

// Column names a copy-down target.
type Column string

const (
	ColumnDate  Column = "date"
	ColumnStart Column = "start"
	ColumnEnd   Column = "end"
	ColumnRole  Column = "role"
)

// FillEndTime applies end to every row flagged missing_end_time and returns how many rows
// changed.
func FillEndTime(rows []domain.ImportRow, end string) (int, error) {
	t, ok := NormalizeTime(end)
	if !ok {
		return 0, ErrInvalidTime
	}

	n := 0
	for i := range rows {
		if !rows[i].HasError(domain.ImportMissingEndTime) {
			continue
		}
		rows[i].ParsedEnd = t
		rows[i].ClearError(domain.ImportMissingEndTime)
		n++
	}
	return n, nil
}

// CopyDown copies one column of rows[index] into the row below it, carrying the source
// cell's validity along.
func CopyDown(rows []domain.ImportRow, index int, column Column) error {
	if index < 0 || index+1 >= len(rows) {
		return ErrRowOutOfRange
	}
	src, dst := &rows[index], &rows[index+1]

	switch column {
	case ColumnDate:
		dst.RawDate, dst.ParsedDate = src.RawDate, src.ParsedDate
		copyFlag(src, dst, domain.ImportInvalidDate)
	case ColumnStart:
		dst.RawStart, dst.ParsedStart = src.RawStart, src.ParsedStart
		copyFlag(src, dst, domain.ImportMissingTime)
	case ColumnEnd:
		dst.RawEnd, dst.ParsedEnd = src.RawEnd, src.ParsedEnd
		copyFlag(src, dst, domain.ImportMissingEndTime)
	case ColumnRole:
		dst.RawRole, dst.FinalRole = src.RawRole, src.FinalRole
		if dst.FinalRole == "" {
			dst.AddError(domain.ImportAmbiguousRole)
		} else {
			dst.ClearError(domain.ImportAmbiguousRole)
		}
	default:
		return ErrUnknownColumn
	}
	return nil
}

func copyFlag(src, dst *domain.ImportRow, flag domain.ImportError) {
	if src.HasError(flag) {
		dst.AddError(flag)
	} else {
		dst.ClearError(flag)
	}
}

// RowEdit is an operator correction of one row. Nil fields are left alone.
type RowEdit struct {
	Date  *string
	Start *string
	End   *string
	Role  *string
}

// EditRow applies edit to rows[index], re-validating every edited cell.
func EditRow(rows []domain.ImportRow, index int, edit RowEdit) error {
	if index < 0 || index >= len(rows) {
		return ErrRowOutOfRange
	}
	row := &rows[index]

	if edit.Date != nil {
		d, ok := NormalizeDate(*edit.Date)
		if !ok {
			return ErrInvalidDate
		}
		row.RawDate, row.ParsedDate = *edit.Date, d
		row.ClearError(domain.ImportInvalidDate)
	}
	if edit.Start != nil {
		t, ok := NormalizeTime(*edit.Start)
		if !ok {
			return ErrInvalidTime
		}
		row.RawStart, row.ParsedStart = *edit.Start, t
		row.ClearError(domain.ImportMissingTime)
	}
	if edit.End != nil {
		t, ok := NormalizeTime(*edit.End)
		if !ok {
			return ErrInvalidTime
		}
		row.RawEnd, row.ParsedEnd = *edit.End, t
		row.ClearError(domain.ImportMissingEndTime)
	}
	if edit.Role != nil {
		row.FinalRole = strings.TrimSpace(*edit.Role)
		if row.FinalRole == "" {
			row.AddError(domain.ImportAmbiguousRole)
		} else {
			row.ClearError(domain.ImportAmbiguousRole)
		}
	}
	return nil
}

// SelectUser reassigns rows[index] to userID (a roster id, domain.MatchOpen or
// domain.MatchUnknown) and re-runs role inference for the new selection.
func (r *Reconciler) SelectUser(rows []domain.ImportRow, index int, userID string) error {
	if index < 0 || index >= len(rows) {
		return ErrRowOutOfRange
	}
	if userID != domain.MatchOpen && userID != domain.MatchUnknown {
		if _, ok := r.users[userID]; !ok {
			return ErrUnknownUser
		}
	}

	row := &rows[index]
	row.MatchedUserID = userID
	if userID == domain.MatchUnknown {
		row.AddError(domain.ImportNameUnknown)
	} else {
		row.ClearError(domain.ImportNameUnknown)
	}
	r.inferRole(row)
	return nil
}

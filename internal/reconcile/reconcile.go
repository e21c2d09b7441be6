package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/rota"
)

var (
	ErrInvalidDates      = errors.New("some rows have an invalid date, fix them before importing")
	ErrAmbiguousRoles    = errors.New("some rows need a role, choose one before importing")
	ErrMissingStartTimes = errors.New("some rows have no start time, fill them before importing")
	ErrNoRows            = errors.New("there are no rows to import")
	ErrRowOutOfRange     = errors.New("row does not exist")
	ErrInvalidTime       = errors.New("time must look like HH:mm")
	ErrInvalidDate       = errors.New("date is not a valid calendar date")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnknownUser       = errors.New("user is not on the roster")
)

// DefaultShiftLength is used for rows committed without an end time.
const DefaultShiftLength = 8 * time.Hour

// Reconciler holds the roster an import is checked against.
type Reconciler struct {
	matcher *Matcher
	users   map[string]*domain.User
}

func New(roster []*domain.User, threshold int) *Reconciler {
	users := make(map[string]*domain.User, len(roster))
	for _, u := range roster {
		users[u.ID] = u
	}
	return &Reconciler{
		matcher: NewMatcher(roster, threshold),
		users:   users,
	}
}

// Reconcile resolves every raw row and sorts the result by date then start time.
func (r *Reconciler) Reconcile(raw []domain.RawImportRow) []domain.ImportRow {
	rows := make([]domain.ImportRow, 0, len(raw))
	for _, in := range raw {
		rows = append(rows, r.Row(in))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ParsedDate != rows[j].ParsedDate {
			return rows[i].ParsedDate < rows[j].ParsedDate
		}
		return rows[i].ParsedStart < rows[j].ParsedStart
	})
	return rows
}

func (r *Reconciler) Row(in domain.RawImportRow) domain.ImportRow {
	row := domain.ImportRow{
		RawName:  in.Name,
		RawDate:  in.Date,
		RawStart: in.Start,
		RawEnd:   in.End,
		RawRole:  in.Role,
		Errors:   []domain.ImportError{},
	}

	row.MatchedUserID = r.matcher.Match(in.Name)
	if row.MatchedUserID == domain.MatchUnknown {
		row.AddError(domain.ImportNameUnknown)
	}

	if d, ok := NormalizeDate(in.Date); ok {
		row.ParsedDate = d
	} else {
		row.AddError(domain.ImportInvalidDate)
	}

	if t, ok := NormalizeTime(in.Start); ok {
		row.ParsedStart = t
	} else {
		row.AddError(domain.ImportMissingTime)
	}

	if t, ok := NormalizeTime(in.End); ok {
		row.ParsedEnd = t
	} else {
		row.AddError(domain.ImportMissingEndTime)
	}

	r.inferRole(&row)
	return row
}

func (r *Reconciler) inferRole(row *domain.ImportRow) {
	role, ambiguous := InferRole(row.MatchedUserID, row.RawRole, r.users[row.MatchedUserID])
	row.FinalRole = role
	if ambiguous {
		row.AddError(domain.ImportAmbiguousRole)
	} else {
		row.ClearError(domain.ImportAmbiguousRole)
	}
}

// User returns the roster entry with id, if any.
func (r *Reconciler) User(id string) (*domain.User, bool) {
	u, ok := r.users[id]
	return u, ok
}

// CommitOptions carries what the import rows do not: tenant, site and time zone.
type CommitOptions struct {
	CompanyID    string
	LocationID   *string
	LocationName *string
	Location     *time.Location
	NewID        rota.IDGenerator
}

// CheckCommit reports why rows cannot be committed, if they cannot.
func CheckCommit(rows []domain.ImportRow) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	for _, row := range rows {
		if row.HasError(domain.ImportInvalidDate) {
			return ErrInvalidDates
		}
	}
	for _, row := range rows {
		if row.HasError(domain.ImportAmbiguousRole) {
			return ErrAmbiguousRoles
		}
	}
	for _, row := range rows {
		if row.HasError(domain.ImportMissingTime) {
			return ErrMissingStartTimes
		}
	}
	return nil
}

// Commit turns reviewed rows into draft shifts. Unknown names become placeholder
// assignees without a user id; rows still missing an end time get DefaultShiftLength.
func (r *Reconciler) Commit(rows []domain.ImportRow, opts CommitOptions) ([]*domain.Shift, error) {
	if err := CheckCommit(rows); err != nil {
		return nil, err
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	newID := opts.NewID
	if newID == nil {
		newID = rota.NewShiftID
	}

	shifts := make([]*domain.Shift, 0, len(rows))
	for i, row := range rows {
		day, err := time.ParseInLocation(dateLayout, row.ParsedDate, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrInvalidDate)
		}
		start, err := rota.ClockTime(day, row.ParsedStart)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrInvalidTime)
		}
		end := start.Add(DefaultShiftLength)
		if row.ParsedEnd != "" {
			if end, err = rota.ClockTime(day, row.ParsedEnd); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, ErrInvalidTime)
			}
		}

		n := rota.NewShift{
			CompanyID:    opts.CompanyID,
			LocationID:   opts.LocationID,
			LocationName: opts.LocationName,
			Role:         row.FinalRole,
			StartTime:    start,
			EndTime:      end,
		}
		switch row.MatchedUserID {
		case domain.MatchOpen:
		case domain.MatchUnknown:
			n.UserName = domain.StringPtr(placeholderName(row.RawName))
		default:
			n.UserID = domain.StringPtr(row.MatchedUserID)
			if u, ok := r.users[row.MatchedUserID]; ok {
				n.UserName = domain.StringPtr(u.FullName)
			}
		}
		shifts = append(shifts, n.Build(newID))
	}
	return shifts, nil
}

func placeholderName(raw string) string {
	return strings.TrimSpace(raw) + " (Unregistered)"
}

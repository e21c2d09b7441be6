// Package service runs rota operations against the persistence collaborators: it loads
// what the pure engine needs, persists the results and enforces feature gates and
// confirmations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/reconcile"
	"github.com/rotadesk/rota/backend/internal/rota"
)

var (
	ErrFeatureDisabled      = errors.New("the rota is not enabled for this company")
	ErrBiddingDisabled      = errors.New("shift bidding is not enabled for this company")
	ErrConfirmationNotFound = errors.New("confirmation has expired or was already used")
	ErrImportNotFound       = errors.New("import session has expired or does not exist")
	ErrNotShiftOwner        = errors.New("only the assignee can offer this shift")
	ErrNotAssigned          = errors.New("shift is not assigned")
)

// Store is the shift persistence collaborator. Batch methods split their input into
// chunks that each commit atomically and report how many records were committed before
// a failure.
type Store interface {
	GetShift(ctx context.Context, id string) (*domain.Shift, error)
	QueryShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error)
	CountShifts(ctx context.Context, filter domain.ShiftFilter) (int, error)
	CreateShift(ctx context.Context, shift *domain.Shift) error
	UpdateShift(ctx context.Context, id string, patch domain.ShiftPatch) error
	DeleteShift(ctx context.Context, id string) error
	BatchCreateShifts(ctx context.Context, shifts []*domain.Shift) (int, error)
	BatchUpdateShifts(ctx context.Context, updates []domain.ShiftUpdate) (int, error)
	BatchDeleteShifts(ctx context.Context, ids []string) (int, error)
}

// Directory is the read-only view of the company: settings, roster, locations and time off.
type Directory interface {
	GetCompanySettings(ctx context.Context, companyID string) (*domain.CompanySettings, error)
	GetRoster(ctx context.Context, companyID string) ([]*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetLocations(ctx context.Context, companyID string) ([]*domain.Location, error)
	GetLocationByID(ctx context.Context, id string) (*domain.Location, error)
	GetTimeOffInRange(ctx context.Context, companyID string, start, end time.Time) ([]*domain.TimeOffRequest, error)
}

// Cache keeps short-lived state. Get and Take return domain.ErrNotFound for missing keys;
// Take deletes the key it returns.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Take(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type Notifier interface {
	Notify(ctx context.Context, msg domain.MailMessage) error
}

type Options struct {
	ConfirmationTTL    time.Duration
	ImportSessionTTL   time.Duration
	NameMatchThreshold int
	Location           *time.Location
	NewID              rota.IDGenerator
	Now                func() time.Time
}

type Service struct {
	store    Store
	dir      Directory
	cache    Cache
	notifier Notifier

	confirmationTTL  time.Duration
	importSessionTTL time.Duration
	threshold        int
	loc              *time.Location
	newID            rota.IDGenerator
	now              func() time.Time
}

func New(store Store, dir Directory, cache Cache, notifier Notifier, opts Options) *Service {
	s := &Service{
		store:    store,
		dir:      dir,
		cache:    cache,
		notifier: notifier,

		confirmationTTL:  opts.ConfirmationTTL,
		importSessionTTL: opts.ImportSessionTTL,
		threshold:        opts.NameMatchThreshold,
		loc:              opts.Location,
		newID:            opts.NewID,
		now:              opts.Now,
	}

	if s.confirmationTTL <= 0 {
		s.confirmationTTL = 5 * time.Minute
	}
	if s.importSessionTTL <= 0 {
		s.importSessionTTL = 2 * time.Hour
	}
	if s.threshold <= 0 {
		s.threshold = reconcile.DefaultThreshold
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.newID == nil {
		s.newID = rota.NewShiftID
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the time zone calendar days are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// BatchError reports a bulk write that failed part way. Earlier chunks stay committed.
type BatchError struct {
	Op        string
	Committed int
	Total     int
	Err       error
}

func (e *BatchError) Error() string {
	if e.Committed == 0 {
		return fmt.Sprintf("%s failed, nothing was saved: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed after saving %d of %d shifts, retrying may create duplicates: %v",
		e.Op, e.Committed, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func batchErr(op string, committed, total int, err error) error {
	if err == nil {
		return nil
	}
	return &BatchError{Op: op, Committed: committed, Total: total, Err: err}
}

// Settings loads the company settings and fails with ErrFeatureDisabled when the rota
// is switched off. It is the single guard in front of every rota operation.
func (s *Service) Settings(ctx context.Context, companyID string) (*domain.CompanySettings, error) {
	settings, err := s.dir.GetCompanySettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrFeatureDisabled
		}
		return nil, err
	}
	if !settings.RotaEnabled {
		return nil, ErrFeatureDisabled
	}
	return settings, nil
}

// shift loads id and hides shifts of other companies.
func (s *Service) shift(ctx context.Context, companyID, id string) (*domain.Shift, error) {
	sh, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// mutate persists a schedule-altering patch. Every such write goes back to draft.
func (s *Service) mutate(ctx context.Context, sh *domain.Shift, patch domain.ShiftPatch) (*domain.Shift, error) {
	patch = patch.Redraft()
	if err := s.store.UpdateShift(ctx, sh.ID, patch); err != nil {
		return nil, err
	}
	out := sh.Copy()
	patch.Apply(out)
	return out, nil
}

// touch persists a patch that does not alter the schedule (bids, offers).
func (s *Service) touch(ctx context.Context, sh *domain.Shift, patch domain.ShiftPatch) (*domain.Shift, error) {
	if err := s.store.UpdateShift(ctx, sh.ID, patch); err != nil {
		return nil, err
	}
	out := sh.Copy()
	patch.Apply(out)
	return out, nil
}

func (s *Service) createAll(ctx context.Context, op string, shifts []*domain.Shift) ([]*domain.Shift, error) {
	now := s.now()
	for _, sh := range shifts {
		sh.CreatedAt = now
	}
	n, err := s.store.BatchCreateShifts(ctx, shifts)
	if err != nil {
		return nil, batchErr(op, n, len(shifts), err)
	}
	return shifts, nil
}

// Package memstore keeps shifts and the company directory in process memory. It backs
// STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/utils"
)

var ErrDuplicateID = errors.New("shift id already exists")

type entry struct {
	shift *domain.Shift
	seq   int
}

type Store struct {
	mu        sync.RWMutex
	batchSize int
	seq       int

	shifts    map[string]*entry
	users     map[string]*domain.User
	locations map[string]*domain.Location
	companies map[string]*domain.CompanySettings
	timeOff   map[string]*domain.TimeOffRequest
}

func New(batchSize int) *Store {
	return &Store{
		batchSize: batchSize,
		shifts:    make(map[string]*entry),
		users:     make(map[string]*domain.User),
		locations: make(map[string]*domain.Location),
		companies: make(map[string]*domain.CompanySettings),
		timeOff:   make(map[string]*domain.TimeOffRequest),
	}
}

func (s *Store) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.shifts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.shift.Copy(), nil
}

// QueryShifts returns matches ordered by start time, then insertion order.
func (s *Store) QueryShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry
	for _, e := range s.shifts {
		if filter.Matches(e.shift) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.shift.StartTime.Equal(b.shift.StartTime) {
			return a.shift.StartTime.Before(b.shift.StartTime)
		}
		return a.seq < b.seq
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*domain.Shift, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.shift.Copy())
	}
	return out, nil
}

func (s *Store) CountShifts(ctx context.Context, filter domain.ShiftFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.shifts {
		if filter.Matches(e.shift) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateShift(ctx context.Context, shift *domain.Shift) error {
	_, err := s.BatchCreateShifts(ctx, []*domain.Shift{shift})
	return err
}

func (s *Store) UpdateShift(ctx context.Context, id string, patch domain.ShiftPatch) error {
	_, err := s.BatchUpdateShifts(ctx, []domain.ShiftUpdate{{ID: id, Patch: patch}})
	return err
}

func (s *Store) DeleteShift(ctx context.Context, id string) error {
	_, err := s.BatchDeleteShifts(ctx, []string{id})
	return err
}

// BatchCreateShifts inserts chunk by chunk; a chunk with a clashing id is rejected whole.
func (s *Store) BatchCreateShifts(ctx context.Context, shifts []*domain.Shift) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(shifts, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		if err := s.createChunk(chunk); err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (s *Store) createChunk(chunk []*domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(chunk))
	for _, sh := range chunk {
		if _, ok := s.shifts[sh.ID]; ok || seen[sh.ID] {
			return ErrDuplicateID
		}
		seen[sh.ID] = true
	}
	for _, sh := range chunk {
		s.seq++
		s.shifts[sh.ID] = &entry{shift: sh.Copy(), seq: s.seq}
	}
	return nil
}

func (s *Store) BatchUpdateShifts(ctx context.Context, updates []domain.ShiftUpdate) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(updates, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		if err := s.updateChunk(chunk); err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (s *Store) updateChunk(chunk []domain.ShiftUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range chunk {
		if _, ok := s.shifts[u.ID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, u := range chunk {
		u.Patch.Apply(s.shifts[u.ID].shift)
	}
	return nil
}

func (s *Store) BatchDeleteShifts(ctx context.Context, ids []string) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(ids, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		if err := s.deleteChunk(chunk); err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (s *Store) deleteChunk(chunk []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range chunk {
		if _, ok := s.shifts[id]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, id := range chunk {
		delete(s.shifts, id)
	}
	return nil
}

func (s *Store) GetCompanySettings(ctx context.Context, companyID string) (*domain.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[companyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

// GetRoster lists the active members of a company.
func (s *Store) GetRoster(ctx context.Context, companyID string) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.User
	for _, u := range s.users {
		if u.CompanyID == companyID && u.IsActive {
			copied := *u
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetLocations(ctx context.Context, companyID string) ([]*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Location
	for _, l := range s.locations {
		if l.CompanyID == companyID {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (s *Store) GetTimeOffInRange(ctx context.Context, companyID string, start, end time.Time) ([]*domain.TimeOffRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TimeOffRequest
	for _, t := range s.timeOff {
		if t.CompanyID == companyID && t.Overlaps(start, end) {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) PutCompany(c *domain.CompanySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.companies[c.CompanyID] = &copied
}

func (s *Store) PutUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *u
	s.users[u.ID] = &copied
}

func (s *Store) PutLocation(l *domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *l
	s.locations[l.ID] = &copied
}

func (s *Store) PutTimeOff(t *domain.TimeOffRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.timeOff[t.ID] = &copied
}

// The Insert methods satisfy seed.Writer so STORE_DRIVER=memory can be seeded at startup.

func (s *Store) InsertCompany(ctx context.Context, c *domain.CompanySettings) error {
	s.PutCompany(c)
	return nil
}

func (s *Store) InsertUser(ctx context.Context, u *domain.User) error {
	s.PutUser(u)
	return nil
}

func (s *Store) InsertLocation(ctx context.Context, l *domain.Location) error {
	s.PutLocation(l)
	return nil
}

func (s *Store) InsertTimeOff(ctx context.Context, t *domain.TimeOffRequest) error {
	s.PutTimeOff(t)
	return nil
}

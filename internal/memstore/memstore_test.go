package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shiftAt(id string, hour int) *domain.Shift {
	start := time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	return &domain.Shift{ID: id, CompanyID: "acme", Role: "Server", StartTime: start, EndTime: start.Add(time.Hour), Status: domain.ShiftStatusDraft, Bids: []string{}}
}

func TestBatchCreateIsChunked(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	require.NoError(t, s.CreateShift(ctx, shiftAt("taken", 1)))

	n, err := s.BatchCreateShifts(ctx, []*domain.Shift{shiftAt("a", 2), shiftAt("b", 3), shiftAt("c", 4), shiftAt("taken", 5)})
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 2, n)

	count, err := s.CountShifts(ctx, domain.ShiftFilter{CompanyID: "acme"})
	require.NoError(t, err)
	// the second chunk (c, taken) is rejected as a whole
	assert.Equal(t, 3, count)
}

func TestQueryOrderAndIsolation(t *testing.T) {
	s := New(10)
	ctx := context.Background()

	_, err := s.BatchCreateShifts(ctx, []*domain.Shift{shiftAt("late", 9), shiftAt("x", 8), shiftAt("y", 8)})
	require.NoError(t, err)

	got, err := s.QueryShifts(ctx, domain.ShiftFilter{CompanyID: "acme"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"x", "y", "late"}, []string{got[0].ID, got[1].ID, got[2].ID})

	got[0].Role = "mutated"
	again, err := s.GetShift(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Server", again.Role)

	limited, err := s.QueryShifts(ctx, domain.ShiftFilter{CompanyID: "acme", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	s := New(10)
	ctx := context.Background()
	sh := shiftAt("a", 9)
	sh.UserID = domain.StringPtr("u1")
	require.NoError(t, s.CreateShift(ctx, sh))

	require.NoError(t, s.UpdateShift(ctx, "a", domain.ShiftPatch{UserID: domain.Remove[string](), Bids: domain.Set([]string{"u2"})}))
	got, err := s.GetShift(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	assert.Equal(t, []string{"u2"}, got.Bids)

	assert.ErrorIs(t, s.UpdateShift(ctx, "missing", domain.ShiftPatch{}), domain.ErrNotFound)

	n, err := s.BatchDeleteShifts(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.GetShift(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectory(t *testing.T) {
	s := New(10)
	ctx := context.Background()
	s.PutUser(&domain.User{ID: "u1", CompanyID: "acme", Username: "bella", FullName: "Bella", IsActive: true})
	s.PutUser(&domain.User{ID: "u2", CompanyID: "acme", Username: "gone", FullName: "Gone", IsActive: false})
	s.PutTimeOff(&domain.TimeOffRequest{ID: "t1", CompanyID: "acme", UserID: "u1",
		StartTime: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)})

	roster, err := s.GetRoster(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "u1", roster[0].ID)

	u, err := s.GetUserByUsername(ctx, "bella")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	to, err := s.GetTimeOffInRange(ctx, "acme", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, to, 1)

	_, err = s.GetCompanySettings(ctx, "acme")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

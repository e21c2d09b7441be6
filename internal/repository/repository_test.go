package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rotadesk/rota/backend/internal/config"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("ROTA_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("ROTA_TEST_DATABASE_DSN is not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS shifts, time_off_requests, locations, users, companies`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10
	cfg.Rota.BatchSize = 2

	repo := NewRepository(cfg, db)
	require.NoError(t, repo.InsertCompany(ctx, &domain.CompanySettings{CompanyID: "acme", Name: "Acme", RotaEnabled: true}))
	return repo
}

func testShift(id string, hour int) *domain.Shift {
	start := time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	return &domain.Shift{
		ID:        id,
		CompanyID: "acme",
		Role:      "Server",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    domain.ShiftStatusDraft,
		Bids:      []string{},
		CreatedAt: start,
	}
}

func TestShiftLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	n, err := repo.BatchCreateShifts(ctx, []*domain.Shift{testShift("a", 9), testShift("b", 8), testShift("c", 12)})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.QueryShifts(ctx, domain.ShiftFilter{CompanyID: "acme", Status: domain.ShiftStatusDraft})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)

	patch := domain.ShiftPatch{
		UserID:   domain.Set("u1"),
		UserName: domain.Set("Bella"),
		Bids:     domain.Set([]string{"u2", "u3"}),
	}
	require.NoError(t, repo.UpdateShift(ctx, "a", patch))

	shift, err := repo.GetShift(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, shift.UserID)
	assert.Equal(t, "u1", *shift.UserID)
	assert.Equal(t, []string{"u2", "u3"}, shift.Bids)

	require.NoError(t, repo.UpdateShift(ctx, "a", domain.ShiftPatch{UserID: domain.Remove[string](), Bids: domain.Null[[]string]()}))
	shift, err = repo.GetShift(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, shift.UserID)
	assert.Empty(t, shift.Bids)

	count, err := repo.CountShifts(ctx, domain.ShiftFilter{CompanyID: "acme", IDs: []string{"a", "c"}})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	deleted, err := repo.BatchDeleteShifts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	_, err = repo.GetShift(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchCommitsWholeChunks(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateShift(ctx, testShift("taken", 6)))

	n, err := repo.BatchCreateShifts(ctx, []*domain.Shift{testShift("a", 7), testShift("b", 8), testShift("c", 9), testShift("taken", 10)})
	require.Error(t, err)
	assert.Equal(t, 2, n)

	count, err := repo.CountShifts(ctx, domain.ShiftFilter{CompanyID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	n, err = repo.BatchUpdateShifts(ctx, []domain.ShiftUpdate{
		{ID: "a", Patch: domain.ShiftPatch{Status: domain.Set(domain.ShiftStatusPublished)}},
		{ID: "missing", Patch: domain.ShiftPatch{Status: domain.Set(domain.ShiftStatusPublished)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, n)

	a, err := repo.GetShift(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusDraft, a.Status)
}

func TestDirectory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertUser(ctx, &domain.User{ID: "u1", CompanyID: "acme", Username: "bella", PasswordHash: "x",
		FullName: "Bella Jones", Email: "bella@example.com", Role: domain.RoleStaff, Positions: []string{"Bartender"}, IsActive: true}))
	require.NoError(t, repo.InsertUser(ctx, &domain.User{ID: "u2", CompanyID: "acme", Username: "gone", PasswordHash: "x",
		FullName: "Gone", Email: "gone@example.com", Role: domain.RoleStaff, IsActive: false}))
	require.NoError(t, repo.InsertLocation(ctx, &domain.Location{ID: "loc", CompanyID: "acme", Name: "Main Bar"}))
	require.NoError(t, repo.InsertTimeOff(ctx, &domain.TimeOffRequest{ID: "t1", CompanyID: "acme", UserID: "u1", UserName: "Bella Jones",
		StartTime: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), Status: domain.TimeOffApproved}))

	roster, err := repo.GetRoster(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, []string{"Bartender"}, roster[0].Positions)

	u, err := repo.GetUserByUsername(ctx, "bella")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = repo.GetUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	loc, err := repo.GetLocationByID(ctx, "loc")
	require.NoError(t, err)
	assert.Equal(t, "Main Bar", loc.Name)

	to, err := repo.GetTimeOffInRange(ctx, "acme", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 4, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, to, 1)

	settings, err := repo.GetCompanySettings(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, settings.RotaEnabled)
}

package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRoster(t *testing.T) {
	store := memstore.New(10)
	ctx := context.Background()

	csv := `name,email,role,positions
Bella Smith,bella@example.com,staff,Bartender; Server
Meg Manager,meg@example.com,Manager,
No Email,,staff,Chef
Odd Role,odd@example.com,owner,
Bella Again,bella@example.com,staff,Chef
`
	n, err := Roster(ctx, store, "acme", strings.NewReader(csv), "secret")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bella, err := store.GetUserByUsername(ctx, "bella")
	require.NoError(t, err)
	assert.Equal(t, "Bella Smith", bella.FullName)
	assert.Equal(t, []string{"Bartender", "Server"}, bella.Positions)
	assert.Equal(t, domain.RoleStaff, bella.Role)
	assert.True(t, bella.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(bella.PasswordHash), []byte("secret")))

	meg, err := store.GetUserByUsername(ctx, "meg")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, meg.Role)
	assert.Empty(t, meg.Positions)
}

func TestRosterRequiresColumns(t *testing.T) {
	_, err := Roster(context.Background(), memstore.New(10), "acme", strings.NewReader("name,role\nBella,staff\n"), "secret")
	assert.ErrorContains(t, err, `missing column "email"`)
}

func TestDemo(t *testing.T) {
	store := memstore.New(10)
	ctx := context.Background()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	err := Demo(ctx, store, DemoOptions{
		CompanyID:   "demo",
		Password:    "secret",
		EmailDomain: "example.com",
		Users:       3,
		Shifts:      25,
		Now:         now,
	})
	require.NoError(t, err)

	settings, err := store.GetCompanySettings(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, settings.RotaEnabled)

	locations, err := store.GetLocations(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, locations, len(DefaultLocations))

	manager, err := store.GetUserByUsername(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, manager.Role)

	roster, err := store.GetRoster(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, roster, 4)

	shifts, err := store.QueryShifts(ctx, domain.ShiftFilter{CompanyID: "demo"})
	require.NoError(t, err)
	require.Len(t, shifts, 25)
	for _, s := range shifts {
		assert.Equal(t, domain.ShiftStatusDraft, s.Status)
		assert.True(t, s.EndTime.After(s.StartTime))
		// week of 2025-03-12 runs Monday 10th to Sunday 16th
		assert.False(t, s.StartTime.Before(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
		assert.True(t, s.StartTime.Before(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))
	}
}

func TestPassword(t *testing.T) {
	password, generated := Password("configured")
	assert.Equal(t, "configured", password)
	assert.False(t, generated)

	first, generated := Password("")
	assert.True(t, generated)
	assert.Len(t, first, generatedPasswordLength)

	second, _ := Password("")
	assert.NotEqual(t, first, second)
}

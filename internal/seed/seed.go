// Package seed fills a store with companies, staff, time off and draft shifts for
// development and demos.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/rota"
	"github.com/rotadesk/rota/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// Writer is what every store backend offers for seeding.
type Writer interface {
	InsertCompany(ctx context.Context, c *domain.CompanySettings) error
	InsertUser(ctx context.Context, u *domain.User) error
	InsertLocation(ctx context.Context, l *domain.Location) error
	InsertTimeOff(ctx context.Context, t *domain.TimeOffRequest) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetRoster(ctx context.Context, companyID string) ([]*domain.User, error)
	GetLocations(ctx context.Context, companyID string) ([]*domain.Location, error)
	BatchCreateShifts(ctx context.Context, shifts []*domain.Shift) (int, error)
}

var DefaultLocations = []string{"Main Bar", "Restaurant", "Terrace"}

const generatedPasswordLength = 16

// Password returns the configured seed password, or a random one when none is set.
// generated tells the caller to print it, since nobody could log in otherwise.
func Password(configured string) (password string, generated bool) {
	if configured != "" {
		return configured, false
	}
	return utils.GenerateRandomPassword(generatedPasswordLength), true
}

// Company creates a company with the rota and bidding switched on, plus its locations.
func Company(ctx context.Context, w Writer, companyID, name string, locations []string) error {
	company := &domain.CompanySettings{
		CompanyID:              companyID,
		Name:                   name,
		RotaEnabled:            true,
		AllowShiftBidding:      true,
		RequireTimeOffApproval: true,
		RotaShowFinishTimes:    true,
	}
	if err := w.InsertCompany(ctx, company); err != nil {
		return fmt.Errorf("insert company %s: %w", companyID, err)
	}

	for _, locationName := range locations {
		location := &domain.Location{ID: uuid.NewString(), CompanyID: companyID, Name: locationName}
		if err := w.InsertLocation(ctx, location); err != nil {
			return fmt.Errorf("insert location %s: %w", locationName, err)
		}
	}

	slog.Info("company seeded", slog.String("company_id", companyID), slog.Int("locations", len(locations)))
	return nil
}

// Roster reads a CSV with the header name,email,role,positions and inserts one user per
// row. Positions are separated by ";". The username is the local part of the email;
// rows whose username already exists are skipped. Every user gets the same password.
func Roster(ctx context.Context, w Writer, companyID string, r io.Reader, password string) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	column := make(map[string]int, len(headers))
	for i, header := range headers {
		column[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"name", "email", "role"} {
		if _, ok := column[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	get := func(row []string, name string) string {
		i, ok := column[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	inserted := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return inserted, fmt.Errorf("line %d: %w", line, err)
		}

		email := get(row, "email")
		username, _, ok := strings.Cut(email, "@")
		if !ok || username == "" {
			slog.Error("skipping row without a valid email", slog.Int("line", line))
			continue
		}

		role := domain.Role(strings.ToLower(get(row, "role")))
		switch role {
		case domain.RoleStaff, domain.RoleManager, domain.RoleAdmin:
		default:
			slog.Error("skipping row with unknown role", slog.Int("line", line), slog.String("role", string(role)))
			continue
		}

		if _, err := w.GetUserByUsername(ctx, username); err == nil {
			slog.Info("user already exists", slog.String("username", username))
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return inserted, err
		}

		positions := []string{}
		for _, p := range strings.Split(get(row, "positions"), ";") {
			if p = strings.TrimSpace(p); p != "" {
				positions = append(positions, p)
			}
		}

		user := &domain.User{
			ID:           uuid.NewString(),
			CompanyID:    companyID,
			Username:     username,
			PasswordHash: string(passwordHash),
			FullName:     get(row, "name"),
			Email:        email,
			Role:         role,
			Positions:    positions,
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
		if err := w.InsertUser(ctx, user); err != nil {
			return inserted, fmt.Errorf("line %d: %w", line, err)
		}
		inserted++
	}

	slog.Info("roster imported", slog.String("company_id", companyID), slog.Int("count", inserted))
	return inserted, nil
}

// Users inserts n random users. Failures are logged and skipped.
func Users(ctx context.Context, w Writer, companyID string, n int, password, emailDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(companyID, password, emailDomain)
		if err != nil {
			slog.Error("failed to generate a random user", slog.String("error", err.Error()))
			continue
		}

		if err := w.InsertUser(ctx, user); err != nil {
			slog.Error("failed to insert user", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("users seeded", slog.Int("count", cnt))
	return cnt
}

// TimeOff gives roughly a third of the active staff some time off in the week of ref.
func TimeOff(ctx context.Context, w Writer, companyID string, ref time.Time) (int, error) {
	roster, err := w.GetRoster(ctx, companyID)
	if err != nil {
		return 0, err
	}

	weekStart := rota.WeekOf(ref).Start
	cnt := 0
	for _, user := range roster {
		if user.Role != domain.RoleStaff || rand.Intn(3) != 0 {
			continue
		}
		if err := w.InsertTimeOff(ctx, utils.GenerateRandomTimeOff(user, weekStart)); err != nil {
			return cnt, err
		}
		cnt++
	}

	slog.Info("time off seeded", slog.Int("count", cnt))
	return cnt, nil
}

// Shifts creates n draft shifts in the week of ref, assigned among the company's staff.
func Shifts(ctx context.Context, w Writer, companyID string, ref time.Time, n int) (int, error) {
	roster, err := w.GetRoster(ctx, companyID)
	if err != nil {
		return 0, err
	}
	locations, err := w.GetLocations(ctx, companyID)
	if err != nil {
		return 0, err
	}

	weekStart := rota.WeekOf(ref).Start
	shifts := utils.GenerateRandomShifts(companyID, weekStart, n, roster, locations, rota.NewShiftID)

	committed, err := w.BatchCreateShifts(ctx, shifts)
	if err != nil {
		return committed, err
	}

	slog.Info("shifts seeded", slog.Int("count", committed))
	return committed, nil
}

// DemoOptions describes the demo company seeded into an empty store.
type DemoOptions struct {
	CompanyID   string
	Password    string
	EmailDomain string
	Users       int
	Shifts      int
	Now         time.Time
}

// Demo seeds a complete company: locations, a manager named "manager", random staff,
// time off and a week of draft shifts.
func Demo(ctx context.Context, w Writer, opts DemoOptions) error {
	if err := Company(ctx, w, opts.CompanyID, "Demo Hospitality", DefaultLocations); err != nil {
		return err
	}

	managerCSV := fmt.Sprintf("name,email,role,positions\nDemo Manager,manager@%s,manager,\n", opts.EmailDomain)
	if _, err := Roster(ctx, w, opts.CompanyID, strings.NewReader(managerCSV), opts.Password); err != nil {
		return err
	}

	Users(ctx, w, opts.CompanyID, opts.Users, opts.Password, opts.EmailDomain)

	if _, err := TimeOff(ctx, w, opts.CompanyID, opts.Now); err != nil {
		return err
	}
	if _, err := Shifts(ctx, w, opts.CompanyID, opts.Now, opts.Shifts); err != nil {
		return err
	}

	return nil
}

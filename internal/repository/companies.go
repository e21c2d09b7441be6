package repository

import (
	"context"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

func (r *Repository) GetCompanySettings(ctx context.Context, companyID string) (*domain.CompanySettings, error) {
	query := `
		SELECT id, name, rota_enabled, allow_shift_bidding, require_time_off_approval, rota_show_finish_times
		FROM companies WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	settings := &domain.CompanySettings{}
	dst := []any{&settings.CompanyID, &settings.Name, &settings.RotaEnabled, &settings.AllowShiftBidding,
		&settings.RequireTimeOffApproval, &settings.RotaShowFinishTimes}
	if err := r.dbpool.QueryRowContext(ctx, query, companyID).Scan(dst...); err != nil {
		return nil, notFound(err)
	}

	return settings, nil
}

func (r *Repository) InsertCompany(ctx context.Context, settings *domain.CompanySettings) error {
	query := `
		INSERT INTO companies (id, name, rota_enabled, allow_shift_bidding, require_time_off_approval, rota_show_finish_times)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{settings.CompanyID, settings.Name, settings.RotaEnabled, settings.AllowShiftBidding,
		settings.RequireTimeOffApproval, settings.RotaShowFinishTimes}
	_, err := r.dbpool.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) GetLocations(ctx context.Context, companyID string) ([]*domain.Location, error) {
	query := `SELECT id, company_id, name FROM locations WHERE company_id = $1 ORDER BY name`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		loc := &domain.Location{}
		if err := rows.Scan(&loc.ID, &loc.CompanyID, &loc.Name); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	query := `SELECT id, company_id, name FROM locations WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	loc := &domain.Location{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&loc.ID, &loc.CompanyID, &loc.Name); err != nil {
		return nil, notFound(err)
	}

	return loc, nil
}

func (r *Repository) InsertLocation(ctx context.Context, loc *domain.Location) error {
	query := `INSERT INTO locations (id, company_id, name) VALUES ($1, $2, $3)`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, loc.ID, loc.CompanyID, loc.Name)
	return err
}

// GetTimeOffInRange returns requests that overlap [start, end).
func (r *Repository) GetTimeOffInRange(ctx context.Context, companyID string, start, end time.Time) ([]*domain.TimeOffRequest, error) {
	query := `
		SELECT id, company_id, user_id, user_name, start_time, end_time, reason, status
		FROM time_off_requests
		WHERE company_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, companyID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.TimeOffRequest, 0)
	for rows.Next() {
		t := &domain.TimeOffRequest{}
		dst := []any{&t.ID, &t.CompanyID, &t.UserID, &t.UserName, &t.StartTime, &t.EndTime, &t.Reason, &t.Status}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *Repository) InsertTimeOff(ctx context.Context, t *domain.TimeOffRequest) error {
	query := `
		INSERT INTO time_off_requests (id, company_id, user_id, user_name, start_time, end_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{t.ID, t.CompanyID, t.UserID, t.UserName, t.StartTime, t.EndTime, t.Reason, string(t.Status)}
	_, err := r.dbpool.ExecContext(ctx, query, args...)
	return err
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
)

const userColumns = `id, company_id, username, password_hash, full_name, email, role, positions, is_active, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var positions []byte

	dst := []any{&user.ID, &user.CompanyID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email,
		&user.Role, &positions, &user.IsActive, &user.CreatedAt}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	user.Positions = []string{}
	if len(positions) > 0 {
		if err := json.Unmarshal(positions, &user.Positions); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// GetRoster returns the active members of a company ordered by name.
func (r *Repository) GetRoster(ctx context.Context, companyID string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE company_id = $1 AND is_active ORDER BY full_name, id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) InsertUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, company_id, username, password_hash, full_name, email, role, positions, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
	`

	positions := user.Positions
	if positions == nil {
		positions = []string{}
	}
	encoded, err := json.Marshal(positions)
	if err != nil {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.ID, user.CompanyID, user.Username, user.PasswordHash, user.FullName, user.Email,
		string(user.Role), string(encoded), user.IsActive, user.CreatedAt}
	_, err = r.dbpool.ExecContext(ctx, query, args...)
	return err
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/utils"
)

const shiftColumns = `id, company_id, location_id, location_name, user_id, user_name, role,
	start_time, end_time, status, bids, is_offered, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	shift := &domain.Shift{}
	var bids []byte

	dst := []any{&shift.ID, &shift.CompanyID, &shift.LocationID, &shift.LocationName, &shift.UserID, &shift.UserName,
		&shift.Role, &shift.StartTime, &shift.EndTime, &shift.Status, &bids, &shift.IsOffered, &shift.CreatedAt}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	shift.Bids = []string{}
	if len(bids) > 0 {
		if err := json.Unmarshal(bids, &shift.Bids); err != nil {
			return nil, err
		}
	}
	return shift, nil
}

func encodeBids(bids []string) (string, error) {
	if bids == nil {
		bids = []string{}
	}
	b, err := json.Marshal(bids)
	return string(b), err
}

// whereClause renders a ShiftFilter as a WHERE clause with positional arguments.
func whereClause(f domain.ShiftFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CompanyID != "" {
		add("company_id = $%d", f.CompanyID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.StartFrom != nil {
		add("start_time >= $%d", *f.StartFrom)
	}
	if f.StartTo != nil {
		add("start_time <= $%d", *f.StartTo)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if len(f.IDs) > 0 {
		add("id = ANY($%d)", f.IDs)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	shift, err := scanShift(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return shift, nil
}

func (r *Repository) QueryShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + shiftColumns + ` FROM shifts` + where + ` ORDER BY start_time, seq`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CountShifts(ctx context.Context, filter domain.ShiftFilter) (int, error) {
	where, args := whereClause(filter)
	query := `SELECT COUNT(*) FROM shifts` + where

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var n int
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) CreateShift(ctx context.Context, shift *domain.Shift) error {
	_, err := r.BatchCreateShifts(ctx, []*domain.Shift{shift})
	return err
}

func (r *Repository) UpdateShift(ctx context.Context, id string, patch domain.ShiftPatch) error {
	_, err := r.BatchUpdateShifts(ctx, []domain.ShiftUpdate{{ID: id, Patch: patch}})
	return err
}

func (r *Repository) DeleteShift(ctx context.Context, id string) error {
	query := `DELETE FROM shifts WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BatchCreateShifts inserts one transaction per chunk of ROTA_BATCH_SIZE shifts.
func (r *Repository) BatchCreateShifts(ctx context.Context, shifts []*domain.Shift) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(shifts, r.cfg.Rota.BatchSize) {
		if err := r.createChunk(ctx, chunk); err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (r *Repository) createChunk(ctx context.Context, chunk []*domain.Shift) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shifts (id, company_id, location_id, location_name, user_id, user_name, role,
			start_time, end_time, status, bids, is_offered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range chunk {
		bids, err := encodeBids(s.Bids)
		if err != nil {
			return err
		}
		args := []any{s.ID, s.CompanyID, s.LocationID, s.LocationName, s.UserID, s.UserName, s.Role,
			s.StartTime, s.EndTime, string(s.Status), bids, s.IsOffered, s.CreatedAt}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// setClause renders a patch as an UPDATE assignment list. Null and remove both clear the
// column; bids clear to an empty array and the offer flag to false.
func setClause(p domain.ShiftPatch) (string, []any, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	optional := func(column string, f domain.Field[string]) {
		switch {
		case f.Op == domain.FieldSet:
			set(column, f.Value)
		case f.Clears():
			sets = append(sets, column+" = NULL")
		}
	}

	optional("location_id", p.LocationID)
	optional("location_name", p.LocationName)
	optional("user_id", p.UserID)
	optional("user_name", p.UserName)
	if p.Role.Op == domain.FieldSet {
		set("role", p.Role.Value)
	}
	if p.StartTime.Op == domain.FieldSet {
		set("start_time", p.StartTime.Value)
	}
	if p.EndTime.Op == domain.FieldSet {
		set("end_time", p.EndTime.Value)
	}
	if p.Status.Op == domain.FieldSet {
		set("status", string(p.Status.Value))
	}
	switch {
	case p.Bids.Op == domain.FieldSet:
		bids, err := encodeBids(p.Bids.Value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, bids)
		sets = append(sets, fmt.Sprintf("bids = $%d::jsonb", len(args)))
	case p.Bids.Clears():
		sets = append(sets, "bids = '[]'::jsonb")
	}
	switch {
	case p.IsOffered.Op == domain.FieldSet:
		set("is_offered", p.IsOffered.Value)
	case p.IsOffered.Clears():
		sets = append(sets, "is_offered = FALSE")
	}

	return strings.Join(sets, ", "), args, nil
}

// BatchUpdateShifts applies one transaction per chunk; a missing id aborts its chunk.
func (r *Repository) BatchUpdateShifts(ctx context.Context, updates []domain.ShiftUpdate) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(updates, r.cfg.Rota.BatchSize) {
		if err := r.updateChunk(ctx, chunk); err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (r *Repository) updateChunk(ctx context.Context, chunk []domain.ShiftUpdate) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range chunk {
		if u.Patch.IsEmpty() {
			continue
		}
		sets, args, err := setClause(u.Patch)
		if err != nil {
			return err
		}
		args = append(args, u.ID)
		query := fmt.Sprintf(`UPDATE shifts SET %s WHERE id = $%d`, sets, len(args))

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}

	return tx.Commit()
}

func (r *Repository) BatchDeleteShifts(ctx context.Context, ids []string) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(ids, r.cfg.Rota.BatchSize) {
		n, err := r.deleteChunk(ctx, chunk)
		if err != nil {
			return committed, err
		}
		committed += n
	}
	return committed, nil
}

func (r *Repository) deleteChunk(ctx context.Context, chunk []string) (int, error) {
	query := `DELETE FROM shifts WHERE id = ANY($1)`

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, chunk)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

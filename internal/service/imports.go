package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/reconcile"
)

func importKey(id string) string {
	return "import:" + id
}

func (s *Service) reconciler(ctx context.Context, companyID string) (*reconcile.Reconciler, error) {
	roster, err := s.dir.GetRoster(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return reconcile.New(roster, s.threshold), nil
}

// StartImport reconciles raw rows against the roster and keeps them for review.
func (s *Service) StartImport(ctx context.Context, companyID string, raw []domain.RawImportRow) (*domain.ImportSession, error) {
	if len(raw) == 0 {
		return nil, reconcile.ErrNoRows
	}
	r, err := s.reconciler(ctx, companyID)
	if err != nil {
		return nil, err
	}

	session := &domain.ImportSession{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Rows:      r.Reconcile(raw),
	}
	if err := s.saveImport(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) GetImport(ctx context.Context, companyID, id string) (*domain.ImportSession, error) {
	payload, err := s.cache.Get(ctx, importKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrImportNotFound
		}
		return nil, err
	}

	var session domain.ImportSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	if session.CompanyID != companyID {
		return nil, ErrImportNotFound
	}
	return &session, nil
}

func (s *Service) saveImport(ctx context.Context, session *domain.ImportSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, importKey(session.ID), payload, s.importSessionTTL)
}

// ImportRowEdit corrects one row. UserID re-selects the person (a roster id, "open" or
// "unknown") and re-runs role inference before any explicit Role is applied.
type ImportRowEdit struct {
	UserID *string
	Date   *string
	Start  *string
	End    *string
	Role   *string
}

func (s *Service) EditImportRow(ctx context.Context, companyID, id string, index int, edit ImportRowEdit) (*domain.ImportSession, error) {
	session, err := s.GetImport(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if edit.UserID != nil {
		r, err := s.reconciler(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if err := r.SelectUser(session.Rows, index, *edit.UserID); err != nil {
			return nil, err
		}
	}

	err = reconcile.EditRow(session.Rows, index, reconcile.RowEdit{
		Date:  edit.Date,
		Start: edit.Start,
		End:   edit.End,
		Role:  edit.Role,
	})
	if err != nil {
		return nil, err
	}

	if err := s.saveImport(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// FillImportEndTime applies end to every row still missing one.
func (s *Service) FillImportEndTime(ctx context.Context, companyID, id, end string) (*domain.ImportSession, int, error) {
	session, err := s.GetImport(ctx, companyID, id)
	if err != nil {
		return nil, 0, err
	}
	n, err := reconcile.FillEndTime(session.Rows, end)
	if err != nil {
		return nil, 0, err
	}
	if err := s.saveImport(ctx, session); err != nil {
		return nil, 0, err
	}
	return session, n, nil
}

func (s *Service) CopyImportDown(ctx context.Context, companyID, id string, index int, column reconcile.Column) (*domain.ImportSession, error) {
	session, err := s.GetImport(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := reconcile.CopyDown(session.Rows, index, column); err != nil {
		return nil, err
	}
	if err := s.saveImport(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CommitImport turns the reviewed rows into drafts with one bulk create and ends the
// session. A failed bulk create keeps the session so the operator can retry.
func (s *Service) CommitImport(ctx context.Context, companyID, id string, locationID *string) ([]*domain.Shift, error) {
	session, err := s.GetImport(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := reconcile.CheckCommit(session.Rows); err != nil {
		return nil, err
	}

	opts := reconcile.CommitOptions{CompanyID: companyID, Location: s.loc, NewID: s.newID}
	if locationID != nil && *locationID != "" {
		loc, err := s.location(ctx, companyID, *locationID)
		if err != nil {
			return nil, err
		}
		opts.LocationID, opts.LocationName = &loc.ID, &loc.Name
	}

	r, err := s.reconciler(ctx, companyID)
	if err != nil {
		return nil, err
	}
	shifts, err := r.Commit(session.Rows, opts)
	if err != nil {
		return nil, err
	}

	created, err := s.createAll(ctx, "import", shifts)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, importKey(id)); err != nil {
		slog.Warn("failed to drop committed import session", "session", id, "error", err)
	}
	return created, nil
}

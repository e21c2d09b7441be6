package handler

import (
	"net/http"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/service"
)

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	CompanyCtxKey  ContextKey = "company"
	ClaimsCtxKey   ContextKey = "claims"
	SettingsCtxKey ContextKey = "settings"
)

func (h *Handler) actor(r *http.Request) service.Actor {
	ctx := r.Context()
	return service.Actor{
		UserID:    ctx.Value(SubCtxKey).(string),
		CompanyID: ctx.Value(CompanyCtxKey).(string),
		Role:      domain.Role(ctx.Value(RoleCtxKey).(string)),
	}
}

func (h *Handler) companyID(r *http.Request) string {
	return r.Context().Value(CompanyCtxKey).(string)
}

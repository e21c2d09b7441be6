package handler

import (
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rotadesk/rota/backend/internal/config"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/service"
	"github.com/rotadesk/rota/backend/internal/utils"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	service    *service.Service
	directory  service.Directory
	cache      service.Cache
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, svc *service.Service, dir service.Directory, cache service.Cache) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := utils.RegisterValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		service:    svc,
		directory:  dir,
		cache:      cache,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Post("/auth/login", h.Login)

	// everything below needs a valid token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/auth/logout", h.Logout)
		r.Get("/me", h.GetMe)

		r.Group(func(r chi.Router) {
			r.Use(h.rotaEnabled)
			managers := h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.GetSchedule)
				r.With(managers).Post("/", h.CreateShift)
				r.Route("/{id}", func(r chi.Router) {
					r.Post("/bids", h.Bid)
					r.Delete("/bids", h.CancelBid)
					r.Post("/offer", h.Offer)

					r.Group(func(r chi.Router) {
						r.Use(managers)
						r.Patch("/", h.EditShift)
						r.Delete("/", h.DeleteShift)
						r.Post("/duplicate", h.DuplicateShift)
						r.Post("/paste", h.PasteShift)
						r.Post("/repeat", h.RepeatShift)
						r.Post("/drop", h.DropShift)
						r.Post("/assign", h.PreviewAssign)
						r.Post("/unassign", h.Unassign)
					})
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(managers)

				r.Get("/roster", h.GetRoster)
				r.Get("/locations", h.GetLocations)

				r.Post("/days/paste", h.PasteDay)
				r.Post("/weeks/paste", h.PasteWeek)

				r.Route("/drafts", func(r chi.Router) {
					r.Get("/count", h.GetDraftCount)
					r.Post("/publish", h.PreviewPublish)
					r.Post("/clear", h.PreviewClearDrafts)
				})
				r.Post("/confirmations/{token}", h.Confirm)

				r.Route("/imports", func(r chi.Router) {
					r.Post("/", h.StartImport)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.GetImport)
						r.Patch("/rows/{index}", h.EditImportRow)
						r.Post("/fill-end-time", h.FillImportEndTime)
						r.Post("/copy-down", h.CopyImportDown)
						r.Post("/commit", h.CommitImport)
					})
				})
			})
		})
	})
}

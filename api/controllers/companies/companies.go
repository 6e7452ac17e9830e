package companies

import (
	"net/http"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	internalcompanies "github.com/coopmercado/coopmercado-backend/internal/companies"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
)

type renameRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	LogoURL *string `json:"logo_url,omitempty"`
}

func Get(svc internalcompanies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		company, err := svc.Get(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcompanies.ToDTO(company))
	}
}

func UpdateTheme(svc internalcompanies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body types.CompanyTheme
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.UpdateTheme(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcompanies.ToDTO(company))
	}
}

func UpdateSettings(svc internalcompanies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body types.BusinessSettings
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.UpdateSettings(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcompanies.ToDTO(company))
	}
}

func Rename(svc internalcompanies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body renameRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Rename(r.Context(), actor, body.Name, body.LogoURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcompanies.ToDTO(company))
	}
}

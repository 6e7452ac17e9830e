package markets

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	internalmarkets "github.com/coopmercado/coopmercado-backend/internal/markets"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type marketRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Owner   string `json:"owner" validate:"required,max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	Phone   string `json:"phone,omitempty" validate:"max=30"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	CNPJ    string `json:"cnpj,omitempty" validate:"max=20"`
}

func (m marketRequest) toInput() internalmarkets.Input {
	return internalmarkets.Input{
		Name:    validators.SanitizeString(m.Name, 200),
		Owner:   validators.SanitizeString(m.Owner, 200),
		Address: validators.SanitizeString(m.Address, 500),
		Phone:   validators.SanitizeString(m.Phone, 30),
		Email:   strings.TrimSpace(m.Email),
		CNPJ:    validators.SanitizeString(m.CNPJ, 20),
	}
}

func Create(svc internalmarkets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body marketRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		market, err := svc.Create(r.Context(), actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalmarkets.ToDTO(market))
	}
}

func Update(svc internalmarkets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseMarketID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body marketRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		market, err := svc.Update(r.Context(), actor, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalmarkets.ToDTO(market))
	}
}

func Delete(svc internalmarkets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseMarketID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func Get(svc internalmarkets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseMarketID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		market, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalmarkets.ToDTO(market))
	}
}

func List(svc internalmarkets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		records, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalmarkets.ToDTOs(records))
	}
}

func parseMarketID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "marketId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "market id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid market id")
	}
	return id, nil
}

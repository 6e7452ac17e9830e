package quotes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	internalquotes "github.com/coopmercado/coopmercado-backend/internal/quotes"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type createRequest struct {
	MarketID       uuid.UUID   `json:"market_id" validate:"required"`
	TaxRatePercent *string     `json:"tax_rate_percent,omitempty"`
	ValidUntil     time.Time   `json:"valid_until" validate:"required"`
	Notes          *string     `json:"notes,omitempty"`
	Terms          *string     `json:"terms,omitempty"`
	Lines          []lineInput `json:"lines" validate:"required,min=1,dive"`
}

type updateRequest struct {
	TaxRatePercent *string     `json:"tax_rate_percent,omitempty"`
	ValidUntil     *time.Time  `json:"valid_until,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
	Terms          *string     `json:"terms,omitempty"`
	Lines          []lineInput `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type lineInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

func Create(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Create(r.Context(), actor, internalquotes.CreateInput{
			MarketID:       body.MarketID,
			TaxRatePercent: body.TaxRatePercent,
			ValidUntil:     body.ValidUntil,
			Notes:          body.Notes,
			Terms:          body.Terms,
			Lines:          toLineInputs(body.Lines),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalquotes.ToDTO(quote, time.Now()))
	}
}

func Update(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Update(r.Context(), actor, id, internalquotes.UpdateInput{
			TaxRatePercent: body.TaxRatePercent,
			ValidUntil:     body.ValidUntil,
			Notes:          body.Notes,
			Terms:          body.Terms,
			Lines:          toLineInputs(body.Lines),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalquotes.ToDTO(quote, time.Now()))
	}
}

func Get(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalquotes.ToDTO(quote, time.Now()))
	}
}

func List(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters internalquotes.Filters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseQuoteStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		page, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalquotes.ToPageDTO(page, time.Now()))
	}
}

// Transition moves a quote through its lifecycle. Expiry is never a valid
// target; it happens by the clock, not by request.
func Transition(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseQuoteStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		quote, err := svc.Transition(r.Context(), actor, id, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalquotes.ToDTO(quote, time.Now()))
	}
}

// Export returns the print-ready payload with company branding.
func Export(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := svc.Export(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func toLineInputs(lines []lineInput) []internalquotes.LineInput {
	if lines == nil {
		return nil
	}
	out := make([]internalquotes.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, internalquotes.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return out
}

func parseQuoteID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "quoteId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
	}
	return id, nil
}

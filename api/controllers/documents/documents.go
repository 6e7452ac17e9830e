package documents

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	internaldocuments "github.com/coopmercado/coopmercado-backend/internal/documents"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type registerRequest struct {
	Name      string     `json:"name" validate:"required,max=300"`
	Type      string     `json:"type,omitempty"`
	URL       string     `json:"url" validate:"required,max=2000"`
	SizeBytes int64      `json:"size_bytes" validate:"min=0"`
	MarketID  *uuid.UUID `json:"market_id,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
}

func Register(svc internaldocuments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var docType enums.DocumentType
		if raw := strings.TrimSpace(body.Type); raw != "" {
			parsed, err := enums.ParseDocumentType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document type"))
				return
			}
			docType = parsed
		}

		doc, err := svc.Register(r.Context(), actor, internaldocuments.RegisterInput{
			Name:      body.Name,
			Type:      docType,
			URL:       body.URL,
			SizeBytes: body.SizeBytes,
			MarketID:  body.MarketID,
			OrderID:   body.OrderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internaldocuments.ToDTO(doc))
	}
}

func Get(svc internaldocuments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseDocumentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaldocuments.ToDTO(doc))
	}
}

func List(svc internaldocuments.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaldocuments.ToPageDTO(page))
	}
}

func Delete(svc internaldocuments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseDocumentID(r)
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

func parseDocumentID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "documentId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id")
	}
	return id, nil
}

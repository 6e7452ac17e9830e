package reports

import (
	"context"
	"net/http"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	"github.com/coopmercado/coopmercado-backend/internal/policy"
	internalreports "github.com/coopmercado/coopmercado-backend/internal/reports"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type summaryFunc func(ctx context.Context, actor policy.Actor, window internalreports.Window) (*internalreports.Summary, error)

// OrdersSummary aggregates order volume by status and market.
func OrdersSummary(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return summaryHandler(svc.OrdersSummary, logg)
}

// QuotesSummary aggregates quote volume by status and market.
func QuotesSummary(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return summaryHandler(svc.QuotesSummary, logg)
}

func summaryHandler(summarize summaryFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := summarize(r.Context(), actor, internalreports.Window{From: from, To: to})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

package live

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	internallive "github.com/coopmercado/coopmercado-backend/internal/live"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

// Stream serves the tenant's collection snapshots as server-sent events.
// The connection stays open until the client disconnects.
func Stream(listener *internallive.Listener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		if listener == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "live feed unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		var collections []string
		if raw := strings.TrimSpace(r.URL.Query().Get("collections")); raw != "" {
			collections = strings.Split(raw, ",")
		}

		snapshots, err := listener.Stream(r.Context(), actor.CompanyID, collections...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open feed stream"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for snapshot := range snapshots {
			scoped, err := internallive.ScopeSnapshot(actor, snapshot)
			if err != nil {
				logg.Error(r.Context(), "scope feed snapshot", err)
				continue
			}
			payload, err := json.Marshal(scoped)
			if err != nil {
				logg.Error(r.Context(), "encode feed snapshot", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", scoped.Collection, payload)
			flusher.Flush()
		}
	}
}

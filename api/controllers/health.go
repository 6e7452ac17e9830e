package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/coopmercado/coopmercado-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoopMercado-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the datasources the API cannot serve without.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoopMercado-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		checks["database"] = pingStatus(ctx, logg, "database", dbP, &ready)
		checks["redis"] = pingStatus(ctx, logg, "redis", redisP, &ready)

		if !ready {
			writeNotReady(w, checks)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingStatus(ctx context.Context, logg *logger.Logger, name string, p pinger, ready *bool) string {
	if p == nil {
		*ready = false
		return "missing"
	}
	if err := p.Ping(ctx); err != nil {
		if logg != nil {
			logg.Error(ctx, "readiness check failed for "+name, err)
		}
		*ready = false
		return "down"
	}
	return "ok"
}

func writeNotReady(w http.ResponseWriter, checks map[string]string) {
	responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
		"status": "degraded",
		"checks": checks,
	})
}

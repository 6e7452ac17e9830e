package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coopmercado/coopmercado-backend/api/controllers"
	authcontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/auth"
	companycontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/companies"
	documentcontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/documents"
	livecontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/live"
	marketcontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/markets"
	ordercontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/orders"
	productcontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/products"
	quotecontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/quotes"
	reportcontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/reports"
	usercontrollers "github.com/coopmercado/coopmercado-backend/api/controllers/users"
	"github.com/coopmercado/coopmercado-backend/api/middleware"
	internalauth "github.com/coopmercado/coopmercado-backend/internal/auth"
	"github.com/coopmercado/coopmercado-backend/internal/catalog"
	"github.com/coopmercado/coopmercado-backend/internal/companies"
	"github.com/coopmercado/coopmercado-backend/internal/documents"
	internallive "github.com/coopmercado/coopmercado-backend/internal/live"
	"github.com/coopmercado/coopmercado-backend/internal/markets"
	"github.com/coopmercado/coopmercado-backend/internal/orders"
	"github.com/coopmercado/coopmercado-backend/internal/quotes"
	"github.com/coopmercado/coopmercado-backend/internal/reports"
	"github.com/coopmercado/coopmercado-backend/internal/users"
	"github.com/coopmercado/coopmercado-backend/pkg/auth/session"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/coopmercado/coopmercado-backend/pkg/metrics"
	"github.com/coopmercado/coopmercado-backend/pkg/redis"
)

// Deps carries everything the router needs wired. The binary builds the
// services; the router only arranges them behind routes.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          redis.Pinger
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService     internalauth.Service
	CatalogService  catalog.Service
	OrdersService   orders.Service
	QuotesService   quotes.Service
	MarketsService  markets.Service
	DocumentService documents.Service
	UsersService    users.Service
	CompanyService  companies.Service
	ReportsService  reports.Service
	LiveListener    *internallive.Listener
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authcontrollers.Login(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/logout", authcontrollers.Logout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productcontrollers.List(deps.CatalogService, logg))
			r.Post("/", productcontrollers.Create(deps.CatalogService, logg))
			r.Get("/{productId}", productcontrollers.Get(deps.CatalogService, logg))
			r.Put("/{productId}", productcontrollers.Update(deps.CatalogService, logg))
			r.Patch("/{productId}/active", productcontrollers.SetActive(deps.CatalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.OrdersService, logg))
			r.Post("/", ordercontrollers.Submit(deps.OrdersService, logg))
			r.Get("/{orderId}", ordercontrollers.Get(deps.OrdersService, logg))
			r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(deps.OrdersService, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", quotecontrollers.List(deps.QuotesService, logg))
			r.Post("/", quotecontrollers.Create(deps.QuotesService, logg))
			r.Get("/{quoteId}", quotecontrollers.Get(deps.QuotesService, logg))
			r.Put("/{quoteId}", quotecontrollers.Update(deps.QuotesService, logg))
			r.Post("/{quoteId}/transition", quotecontrollers.Transition(deps.QuotesService, logg))
			r.Get("/{quoteId}/export", quotecontrollers.Export(deps.QuotesService, logg))
		})

		r.Route("/markets", func(r chi.Router) {
			r.Get("/", marketcontrollers.List(deps.MarketsService, logg))
			r.Post("/", marketcontrollers.Create(deps.MarketsService, logg))
			r.Get("/{marketId}", marketcontrollers.Get(deps.MarketsService, logg))
			r.Put("/{marketId}", marketcontrollers.Update(deps.MarketsService, logg))
			r.Delete("/{marketId}", marketcontrollers.Delete(deps.MarketsService, logg))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentcontrollers.List(deps.DocumentService, logg))
			r.Post("/", documentcontrollers.Register(deps.DocumentService, logg))
			r.Get("/{documentId}", documentcontrollers.Get(deps.DocumentService, logg))
			r.Delete("/{documentId}", documentcontrollers.Delete(deps.DocumentService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.RoleSuperAdmin, enums.RoleCompanyAdmin))
			r.Get("/", usercontrollers.List(deps.UsersService, logg))
			r.Post("/", usercontrollers.Create(deps.UsersService, logg))
			r.Get("/{userId}", usercontrollers.Get(deps.UsersService, logg))
			r.Put("/{userId}", usercontrollers.Update(deps.UsersService, logg))
			r.Patch("/{userId}/active", usercontrollers.SetActive(deps.UsersService, logg))
			r.Delete("/{userId}", usercontrollers.Delete(deps.UsersService, logg))
			r.Post("/{userId}/reset-password", usercontrollers.ResetPassword(deps.UsersService, logg))
		})

		r.Route("/company", func(r chi.Router) {
			r.Get("/", companycontrollers.Get(deps.CompanyService, logg))
			r.Put("/theme", companycontrollers.UpdateTheme(deps.CompanyService, logg))
			r.Put("/settings", companycontrollers.UpdateSettings(deps.CompanyService, logg))
			r.Put("/name", companycontrollers.Rename(deps.CompanyService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/orders", reportcontrollers.OrdersSummary(deps.ReportsService, logg))
			r.Get("/quotes", reportcontrollers.QuotesSummary(deps.ReportsService, logg))
		})

		r.Get("/live", livecontrollers.Stream(deps.LiveListener, logg))
	})

	return r
}

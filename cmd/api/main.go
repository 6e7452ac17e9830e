package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coopmercado/coopmercado-backend/api/routes"
	internalauth "github.com/coopmercado/coopmercado-backend/internal/auth"
	"github.com/coopmercado/coopmercado-backend/internal/catalog"
	"github.com/coopmercado/coopmercado-backend/internal/companies"
	"github.com/coopmercado/coopmercado-backend/internal/documents"
	"github.com/coopmercado/coopmercado-backend/internal/live"
	"github.com/coopmercado/coopmercado-backend/internal/markets"
	"github.com/coopmercado/coopmercado-backend/internal/orders"
	"github.com/coopmercado/coopmercado-backend/internal/quotes"
	"github.com/coopmercado/coopmercado-backend/internal/reports"
	"github.com/coopmercado/coopmercado-backend/internal/users"
	"github.com/coopmercado/coopmercado-backend/pkg/auth/session"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/coopmercado/coopmercado-backend/pkg/metrics"
	"github.com/coopmercado/coopmercado-backend/pkg/migrate"
	"github.com/coopmercado/coopmercado-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	catalogRepo := catalog.NewRepository(gdb)
	marketRepo := markets.NewRepository(gdb)
	companyRepo := companies.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	quoteRepo := quotes.NewRepository(gdb)
	documentRepo := documents.NewRepository(gdb)
	reportRepo := reports.NewRepository(gdb)

	feed, err := live.NewFeed(redisClient, orderRepo, quoteRepo, marketRepo, documentRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create live feed", err)
		os.Exit(1)
	}
	listener, err := live.NewListener(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create live listener", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(userRepo, sessionManager, cfg.JWT)
	requireService(logg, "auth", err)
	catalogService, err := catalog.NewService(catalogRepo)
	requireService(logg, "catalog", err)
	marketsService, err := markets.NewService(marketRepo, feed)
	requireService(logg, "markets", err)
	ordersService, err := orders.NewService(orderRepo, dbClient, catalogRepo, marketRepo, feed)
	requireService(logg, "orders", err)
	quotesService, err := quotes.NewService(quoteRepo, dbClient, catalogRepo, marketRepo, companyRepo, feed)
	requireService(logg, "quotes", err)
	documentsService, err := documents.NewService(documentRepo, feed)
	requireService(logg, "documents", err)
	usersService, err := users.NewService(userRepo, cfg.Password)
	requireService(logg, "users", err)
	companiesService, err := companies.NewService(companyRepo)
	requireService(logg, "companies", err)
	reportsService, err := reports.NewService(reportRepo)
	requireService(logg, "reports", err)

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionChecker: sessionManager,
		HTTPMetrics:    metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),

		AuthService:     authService,
		CatalogService:  catalogService,
		OrdersService:   ordersService,
		QuotesService:   quotesService,
		MarketsService:  marketsService,
		DocumentService: documentsService,
		UsersService:    usersService,
		CompanyService:  companiesService,
		ReportsService:  reportsService,
		LiveListener:    listener,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}

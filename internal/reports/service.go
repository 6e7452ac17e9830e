package reports

import (
	"context"
	"fmt"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/google/uuid"
)

// Service aggregates order and quote volume for dashboards. Company-wide
// roles see the whole tenant; market users see only their bound market.
type Service interface {
	OrdersSummary(ctx context.Context, actor policy.Actor, window Window) (*Summary, error)
	QuotesSummary(ctx context.Context, actor policy.Actor, window Window) (*Summary, error)
}

// StatusBucket is one status slice of a summary.
type StatusBucket struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Cents  int64  `json:"total_cents"`
	Total  string `json:"total"`
}

// MarketBucket is one market slice of a summary.
type MarketBucket struct {
	MarketID   uuid.UUID `json:"market_id"`
	MarketName string    `json:"market_name"`
	Count      int64     `json:"count"`
	Cents      int64     `json:"total_cents"`
	Total      string    `json:"total"`
}

// Summary is a per-tenant aggregation over one collection.
type Summary struct {
	TotalCount int64          `json:"total_count"`
	TotalCents int64          `json:"total_cents"`
	Total      string         `json:"total"`
	ByStatus   []StatusBucket `json:"by_status"`
	ByMarket   []MarketBucket `json:"by_market"`
}

type service struct {
	repo Repository
}

// NewService builds the reports service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) OrdersSummary(ctx context.Context, actor policy.Actor, window Window) (*Summary, error) {
	if err := requireReportReader(actor); err != nil {
		return nil, err
	}
	return s.summarize(ctx, actor, window, s.repo.OrderStatusCounts, s.repo.OrderMarketTotals)
}

func (s *service) QuotesSummary(ctx context.Context, actor policy.Actor, window Window) (*Summary, error) {
	if err := requireReportReader(actor); err != nil {
		return nil, err
	}
	return s.summarize(ctx, actor, window, s.repo.QuoteStatusCounts, s.repo.QuoteMarketTotals)
}

type statusQuery func(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error)
type marketQuery func(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error)

func (s *service) summarize(ctx context.Context, actor policy.Actor, window Window, byStatus statusQuery, byMarket marketQuery) (*Summary, error) {
	if !window.From.IsZero() && !window.To.IsZero() && window.To.Before(window.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window end precedes start")
	}
	if !actor.SeesAllMarkets() && actor.MarketID == nil {
		// A market user without a bound market sees nothing.
		return emptySummary(), nil
	}

	statuses, err := byStatus(ctx, actor.CompanyID, actor.MarketFilter(), window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate by status")
	}
	markets, err := byMarket(ctx, actor.CompanyID, actor.MarketFilter(), window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate by market")
	}

	summary := &Summary{
		ByStatus: make([]StatusBucket, 0, len(statuses)),
		ByMarket: make([]MarketBucket, 0, len(markets)),
	}
	for _, row := range statuses {
		summary.TotalCount += row.Count
		summary.TotalCents += row.Cents
		summary.ByStatus = append(summary.ByStatus, StatusBucket{
			Status: row.Status,
			Count:  row.Count,
			Cents:  row.Cents,
			Total:  money.Format(row.Cents),
		})
	}
	for _, row := range markets {
		summary.ByMarket = append(summary.ByMarket, MarketBucket{
			MarketID:   row.MarketID,
			MarketName: row.MarketName,
			Count:      row.Count,
			Cents:      row.Cents,
			Total:      money.Format(row.Cents),
		})
	}
	summary.Total = money.Format(summary.TotalCents)
	return summary, nil
}

func emptySummary() *Summary {
	return &Summary{
		Total:    money.Format(0),
		ByStatus: []StatusBucket{},
		ByMarket: []MarketBucket{},
	}
}

// Market users read reports too; their aggregation is scoped to the bound
// market by the repository queries.
func requireReportReader(actor policy.Actor) error {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative, enums.RoleMarket:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot read reports")
	}
}

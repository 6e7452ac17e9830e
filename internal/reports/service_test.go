package reports

import (
	"context"
	"testing"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubRepo struct {
	Repository
	statuses  []StatusCount
	markets   []MarketTotal
	gotMarket *uuid.UUID
	calls     int
}

func (s *stubRepo) OrderStatusCounts(_ context.Context, _ uuid.UUID, marketID *uuid.UUID, _ Window) ([]StatusCount, error) {
	s.calls++
	s.gotMarket = marketID
	return s.statuses, nil
}

func (s *stubRepo) OrderMarketTotals(_ context.Context, _ uuid.UUID, marketID *uuid.UUID, _ Window) ([]MarketTotal, error) {
	s.calls++
	s.gotMarket = marketID
	return s.markets, nil
}

func TestOrdersSummaryRollsUp(t *testing.T) {
	market := uuid.New()
	repo := &stubRepo{
		statuses: []StatusCount{
			{Status: "pending", Count: 2, Cents: 3550},
			{Status: "delivered", Count: 1, Cents: 7095},
		},
		markets: []MarketTotal{
			{MarketID: market, MarketName: "Central", Count: 3, Cents: 10645},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleCooperative, CompanyID: uuid.New()}
	summary, err := svc.OrdersSummary(context.Background(), actor, Window{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCount != 3 || summary.TotalCents != 10645 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.Total != "106.45" {
		t.Fatalf("expected formatted total, got %s", summary.Total)
	}
	if len(summary.ByStatus) != 2 || summary.ByStatus[0].Total != "35.50" {
		t.Fatalf("unexpected status buckets: %+v", summary.ByStatus)
	}
	if len(summary.ByMarket) != 1 || summary.ByMarket[0].MarketName != "Central" {
		t.Fatalf("unexpected market buckets: %+v", summary.ByMarket)
	}
}

func TestOrdersSummaryScopedToMarketActor(t *testing.T) {
	marketID := uuid.New()
	repo := &stubRepo{
		statuses: []StatusCount{{Status: "pending", Count: 1, Cents: 1200}},
		markets:  []MarketTotal{{MarketID: marketID, MarketName: "Central", Count: 1, Cents: 1200}},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New(), MarketID: &marketID}
	summary, err := svc.OrdersSummary(context.Background(), actor, Window{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if repo.gotMarket == nil || *repo.gotMarket != marketID {
		t.Fatalf("expected aggregation scoped to market %s, got %v", marketID, repo.gotMarket)
	}
	if summary.TotalCount != 1 || summary.TotalCents != 1200 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
}

func TestOrdersSummaryCompanyWideActorUnscoped(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: uuid.New()}
	if _, err := svc.OrdersSummary(context.Background(), actor, Window{}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if repo.gotMarket != nil {
		t.Fatalf("expected tenant-wide aggregation, got market %v", repo.gotMarket)
	}
}

func TestOrdersSummaryEmptyForUnboundMarketActor(t *testing.T) {
	repo := &stubRepo{statuses: []StatusCount{{Status: "pending", Count: 5, Cents: 9000}}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New()}
	summary, err := svc.OrdersSummary(context.Background(), actor, Window{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no aggregation queries, got %d", repo.calls)
	}
	if summary.TotalCount != 0 || summary.TotalCents != 0 || len(summary.ByStatus) != 0 || len(summary.ByMarket) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestSummaryRejectsInvertedWindow(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: uuid.New()}
	now := time.Now().UTC()
	window := Window{From: now, To: now.Add(-time.Hour)}
	if _, err := svc.OrdersSummary(context.Background(), actor, window); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package live

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/documents"
	"github.com/coopmercado/coopmercado-backend/internal/markets"
	"github.com/coopmercado/coopmercado-backend/internal/orders"
	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/google/uuid"
)

func marketActor(companyID, marketID uuid.UUID) policy.Actor {
	return policy.Actor{
		ID:        uuid.New(),
		Role:      enums.RoleMarket,
		CompanyID: companyID,
		MarketID:  &marketID,
	}
}

func snapshotWith(t *testing.T, collection string, companyID uuid.UUID, items any) Snapshot {
	t.Helper()
	raw, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal items: %v", err)
	}
	return Snapshot{
		Collection: collection,
		CompanyID:  companyID,
		EmittedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Items:      raw,
	}
}

func TestScopeSnapshotExcludesForeignMarketOrders(t *testing.T) {
	companyID := uuid.New()
	myMarket := uuid.New()
	mine := orders.OrderDTO{ID: uuid.New(), MarketID: myMarket}
	foreign := orders.OrderDTO{ID: uuid.New(), MarketID: uuid.New()}
	snapshot := snapshotWith(t, CollectionOrders, companyID, []orders.OrderDTO{mine, foreign})

	scoped, err := ScopeSnapshot(marketActor(companyID, myMarket), snapshot)
	if err != nil {
		t.Fatalf("scope snapshot: %v", err)
	}

	var items []orders.OrderDTO
	if err := json.Unmarshal(scoped.Items, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].ID != mine.ID {
		t.Fatalf("expected only own-market order, got %+v", items)
	}
}

func TestScopeSnapshotKeepsOnlyOwnMarketEntry(t *testing.T) {
	companyID := uuid.New()
	myMarket := uuid.New()
	snapshot := snapshotWith(t, CollectionMarkets, companyID, []markets.MarketDTO{
		{ID: myMarket, Name: "Mercado Central"},
		{ID: uuid.New(), Name: "Mercado Norte"},
	})

	scoped, err := ScopeSnapshot(marketActor(companyID, myMarket), snapshot)
	if err != nil {
		t.Fatalf("scope snapshot: %v", err)
	}

	var items []markets.MarketDTO
	if err := json.Unmarshal(scoped.Items, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].ID != myMarket {
		t.Fatalf("expected only the actor's market, got %+v", items)
	}
}

func TestScopeSnapshotStripsTenantLevelDocuments(t *testing.T) {
	companyID := uuid.New()
	myMarket := uuid.New()
	bound := documents.DocumentDTO{ID: uuid.New(), MarketID: &myMarket}
	tenantLevel := documents.DocumentDTO{ID: uuid.New()}
	snapshot := snapshotWith(t, CollectionDocuments, companyID, []documents.DocumentDTO{bound, tenantLevel})

	scoped, err := ScopeSnapshot(marketActor(companyID, myMarket), snapshot)
	if err != nil {
		t.Fatalf("scope snapshot: %v", err)
	}

	var items []documents.DocumentDTO
	if err := json.Unmarshal(scoped.Items, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].ID != bound.ID {
		t.Fatalf("expected only market-bound document, got %+v", items)
	}
}

func TestScopeSnapshotPassesCompanyWideActorsThrough(t *testing.T) {
	companyID := uuid.New()
	snapshot := snapshotWith(t, CollectionOrders, companyID, []orders.OrderDTO{
		{ID: uuid.New(), MarketID: uuid.New()},
		{ID: uuid.New(), MarketID: uuid.New()},
	})
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: companyID}

	scoped, err := ScopeSnapshot(actor, snapshot)
	if err != nil {
		t.Fatalf("scope snapshot: %v", err)
	}
	if string(scoped.Items) != string(snapshot.Items) {
		t.Fatalf("expected snapshot unchanged for company-wide role")
	}
}

func TestScopeSnapshotEmptiesForUnboundMarketActor(t *testing.T) {
	companyID := uuid.New()
	snapshot := snapshotWith(t, CollectionOrders, companyID, []orders.OrderDTO{
		{ID: uuid.New(), MarketID: uuid.New()},
	})
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: companyID}

	scoped, err := ScopeSnapshot(actor, snapshot)
	if err != nil {
		t.Fatalf("scope snapshot: %v", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(scoped.Items, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty snapshot for unbound market actor, got %d items", len(items))
	}
}

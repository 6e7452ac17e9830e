package orders

import (
	"context"
	"testing"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  market_id TEXT NOT NULL,
  market_name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  total_cents INTEGER NOT NULL,
  notes TEXT,
  version INTEGER NOT NULL DEFAULT 1,
  confirmed_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  total_cents INTEGER NOT NULL
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, companyID, marketID uuid.UUID, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         uuid.New(),
		CompanyID:  companyID,
		MarketID:   marketID,
		MarketName: "Mercado Central",
		Status:     enums.OrderStatusPending,
		TotalCents: 2550,
		Version:    1,
		CreatedAt:  created,
		UpdatedAt:  created,
		Lines: []models.OrderLine{{
			ID:             uuid.New(),
			ProductID:      uuid.New(),
			ProductName:    "Queijo Minas",
			Unit:           "kg",
			UnitPriceCents: 850,
			Quantity:       3,
			TotalCents:     2550,
		}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	order := seedOrder(t, db, company, uuid.New(), time.Now().UTC())

	found, err := repo.FindByID(context.Background(), company, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, int64(2550), found.Lines[0].TotalCents)

	// Another tenant cannot see the order.
	_, err = repo.FindByID(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListMarketFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	m1 := uuid.New()
	m2 := uuid.New()
	now := time.Now().UTC()
	seedOrder(t, db, company, m1, now.Add(-time.Hour))
	seedOrder(t, db, company, m2, now)

	all, err := repo.List(context.Background(), company, nil, pagination.Params{Limit: 10}, Filters{})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 2)

	scoped, err := repo.List(context.Background(), company, &m1, pagination.Params{Limit: 10}, Filters{})
	require.NoError(t, err)
	require.Len(t, scoped.Orders, 1)
	assert.Equal(t, m1, scoped.Orders[0].MarketID)
}

func TestRepositoryListPaginationAndStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	market := uuid.New()
	now := time.Now().UTC()
	older := seedOrder(t, db, company, market, now.Add(-time.Hour))
	newer := seedOrder(t, db, company, market, now)

	first, err := repo.List(context.Background(), company, nil, pagination.Params{Limit: 1}, Filters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 1)
	assert.Equal(t, newer.ID, first.Orders[0].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(context.Background(), company, nil, pagination.Params{Limit: 1, Cursor: first.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)

	pending := enums.OrderStatusPending
	byStatus, err := repo.List(context.Background(), company, nil, pagination.Params{Limit: 10}, Filters{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, byStatus.Orders, 2)
}

func TestRepositoryUpdateStatusOptimistic(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	order := seedOrder(t, db, company, uuid.New(), time.Now().UTC())
	at := time.Now().UTC()

	ok, err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed, 1, at)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(context.Background(), company, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
	assert.Equal(t, 2, reloaded.Version)
	assert.NotNil(t, reloaded.ConfirmedAt)

	// A writer holding the stale version loses.
	ok, err = repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed, enums.OrderStatusDelivered, 1, at)
	require.NoError(t, err)
	assert.False(t, ok)

	// The current version wins.
	ok, err = repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed, enums.OrderStatusDelivered, 2, at)
	require.NoError(t, err)
	assert.True(t, ok)
}

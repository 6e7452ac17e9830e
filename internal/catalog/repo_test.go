package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  unit TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string, created time.Time, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Name:       name,
		Category:   "dairy",
		PriceCents: 850,
		Unit:       "kg",
		Stock:      150,
		IsActive:   active,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryListScopesByTenant(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()
	seedProduct(t, db, company, "Queijo Minas", now, true)
	seedProduct(t, db, other, "Queijo Coalho", now, true)

	page, err := repo.List(context.Background(), company, pagination.Params{Limit: 10}, Filters{})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Queijo Minas", page.Products[0].Name)
	assert.Empty(t, page.NextCursor)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	now := time.Now().UTC()
	seedProduct(t, db, company, "Older", now.Add(-time.Hour), true)
	seedProduct(t, db, company, "Newer", now, true)

	first, err := repo.List(context.Background(), company, pagination.Params{Limit: 1}, Filters{})
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	assert.Equal(t, "Newer", first.Products[0].Name)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(context.Background(), company, pagination.Params{Limit: 1, Cursor: first.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "Older", second.Products[0].Name)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	now := time.Now().UTC()
	active := seedProduct(t, db, company, "Active", now, true)
	seedProduct(t, db, company, "Inactive", now.Add(-time.Minute), false)

	page, err := repo.List(context.Background(), company, pagination.Params{Limit: 10}, Filters{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, active.ID, page.Products[0].ID)

	byCategory, err := repo.List(context.Background(), company, pagination.Params{Limit: 10}, Filters{Category: "bakery"})
	require.NoError(t, err)
	assert.Empty(t, byCategory.Products)
}

func TestRepositorySnapshotReturnsActiveOnly(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	now := time.Now().UTC()
	seedProduct(t, db, company, "Active", now, true)
	seedProduct(t, db, company, "Inactive", now.Add(-time.Minute), false)

	snapshot, err := repo.Snapshot(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Active", snapshot[0].Name)
}

func TestRepositoryAdjustStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	company := uuid.New()
	product := seedProduct(t, db, company, "Stocked", time.Now().UTC(), true)

	require.NoError(t, repo.AdjustStock(context.Background(), product.ID, -50))
	reloaded, err := repo.FindByID(context.Background(), company, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, reloaded.Stock)

	// Draining below zero is refused.
	err = repo.AdjustStock(context.Background(), product.ID, -500)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Window bounds a report period. Zero values leave that side open.
type Window struct {
	From time.Time
	To   time.Time
}

// StatusCount is one status bucket of an aggregation.
type StatusCount struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
	Cents  int64  `gorm:"column:cents"`
}

// MarketTotal rolls one market's volume up.
type MarketTotal struct {
	MarketID   uuid.UUID `gorm:"column:market_id"`
	MarketName string    `gorm:"column:market_name"`
	Count      int64     `gorm:"column:count"`
	Cents      int64     `gorm:"column:cents"`
}

// Repository runs the report aggregations in SQL.
type Repository interface {
	OrderStatusCounts(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error)
	OrderMarketTotals(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error)
	QuoteStatusCounts(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error)
	QuoteMarketTotals(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) OrderStatusCounts(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error) {
	return r.statusCounts(ctx, "orders", companyID, marketID, window)
}

func (r *repository) OrderMarketTotals(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error) {
	return r.marketTotals(ctx, "orders", companyID, marketID, window)
}

func (r *repository) QuoteStatusCounts(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error) {
	return r.statusCounts(ctx, "quotes", companyID, marketID, window)
}

func (r *repository) QuoteMarketTotals(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error) {
	return r.marketTotals(ctx, "quotes", companyID, marketID, window)
}

func (r *repository) statusCounts(ctx context.Context, table string, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]StatusCount, error) {
	var rows []StatusCount
	query := r.db.WithContext(ctx).
		Table(table).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS cents").
		Where("company_id = ?", companyID).
		Group("status").
		Order("status ASC")
	query = applyMarket(query, marketID)
	query = applyWindow(query, window)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) marketTotals(ctx context.Context, table string, companyID uuid.UUID, marketID *uuid.UUID, window Window) ([]MarketTotal, error) {
	var rows []MarketTotal
	query := r.db.WithContext(ctx).
		Table(table).
		Select("market_id, market_name, COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS cents").
		Where("company_id = ?", companyID).
		Group("market_id, market_name").
		Order("cents DESC")
	query = applyMarket(query, marketID)
	query = applyWindow(query, window)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyMarket(query *gorm.DB, marketID *uuid.UUID) *gorm.DB {
	if marketID != nil {
		query = query.Where("market_id = ?", *marketID)
	}
	return query
}

func applyWindow(query *gorm.DB, window Window) *gorm.DB {
	if !window.From.IsZero() {
		query = query.Where("created_at >= ?", window.From)
	}
	if !window.To.IsZero() {
		query = query.Where("created_at < ?", window.To)
	}
	return query
}

package orders

import (
	"context"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists orders and their line snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params, filters Filters) (*OrderPage, error)
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, version int, at time.Time) (bool, error)
}

// Filters narrows order listings.
type Filters struct {
	Status *enums.OrderStatus
}

// OrderPage is one page of orders plus the cursor for the next page.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params, filters Filters) (*OrderPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Lines").
		Where("company_id = ?", companyID)
	if marketID != nil {
		query = query.Where("market_id = ?", *marketID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	page := &OrderPage{}
	if len(orders) > limit {
		last := orders[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		orders = orders[:limit]
	}
	page.Orders = orders
	return page, nil
}

func (r *repository) ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves the order from one status to another guarded by the
// optimistic version counter. Returns false when no row matched, meaning a
// concurrent writer got there first or the status already changed.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, version int, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"version":    gorm.Expr("version + 1"),
		"updated_at": at,
	}
	switch to {
	case enums.OrderStatusConfirmed:
		updates["confirmed_at"] = at
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = at
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND version = ?", id, from, version).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

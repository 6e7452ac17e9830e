package markets

import (
	"context"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists partner markets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, market *models.Market) (*models.Market, error)
	Update(ctx context.Context, market *models.Market) (*models.Market, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Market, error)
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Market, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a markets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, market *models.Market) (*models.Market, error) {
	if err := r.db.WithContext(ctx).Create(market).Error; err != nil {
		return nil, err
	}
	return market, nil
}

func (r *repository) Update(ctx context.Context, market *models.Market) (*models.Market, error) {
	if err := r.db.WithContext(ctx).Save(market).Error; err != nil {
		return nil, err
	}
	return market, nil
}

func (r *repository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&models.Market{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

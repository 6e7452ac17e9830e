package companies

import (
	"context"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists tenant companies.
type Repository interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a companies repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (r *repository) Update(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

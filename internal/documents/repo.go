package documents

import (
	"context"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists document metadata. The blobs live with the external
// storage collaborator.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params) (*DocumentPage, error)
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Document, error)
}

// DocumentPage is one page of documents plus the cursor for the next page.
type DocumentPage struct {
	Documents  []models.Document
	NextCursor string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a documents repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params) (*DocumentPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("company_id = ?", companyID)
	if marketID != nil {
		query = query.Where("market_id = ?", *marketID)
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

	var docs []models.Document
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	page := &DocumentPage{}
	if len(docs) > limit {
		last := docs[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		docs = docs[:limit]
	}
	page.Documents = docs
	return page, nil
}

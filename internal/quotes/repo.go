package quotes

import (
	"context"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists quotes and their line snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	Update(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.QuoteLine) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params, filters Filters) (*QuotePage, error)
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.QuoteStatus, at time.Time) (bool, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Filters narrows quote listings.
type Filters struct {
	Status *enums.QuoteStatus
}

// QuotePage is one page of quotes plus the cursor for the next page.
type QuotePage struct {
	Quotes     []models.Quote
	NextCursor string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) Update(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Omit("Lines").Save(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.QuoteLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quote_id = ?", quoteID).Delete(&models.QuoteLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].QuoteID = quoteID
	}
	return db.Create(&lines).Error
}

func (r *repository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params, filters Filters) (*QuotePage, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Quote{}).
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

	var quotes []models.Quote
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}

	page := &QuotePage{}
	if len(quotes) > limit {
		last := quotes[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		quotes = quotes[:limit]
	}
	page.Quotes = quotes
	return page, nil
}

func (r *repository) ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// UpdateStatus moves the quote between statuses guarded by the current one.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.QuoteStatus, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireBefore persists the time-triggered expiry for every open quote whose
// validity window has passed. Accepted and rejected quotes keep their
// outcome.
func (r *repository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("status IN ? AND valid_until < ?", []enums.QuoteStatus{enums.QuoteStatusDraft, enums.QuoteStatusSent}, cutoff).
		Updates(map[string]any{"status": enums.QuoteStatusExpired, "updated_at": cutoff})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

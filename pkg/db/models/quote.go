package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coopmercado/coopmercado-backend/pkg/enums"
)

// Quote mirrors the order snapshot shape and adds the tax breakdown plus a
// validity horizon. Status moves per enums.QuoteStatus; expiry is derived
// from ValidUntil at read time and persisted by the cron sweep.
type Quote struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      uuid.UUID         `gorm:"column:company_id;type:uuid;not null;index"`
	MarketID       uuid.UUID         `gorm:"column:market_id;type:uuid;not null;index"`
	MarketName     string            `gorm:"column:market_name;not null"`
	Status         enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	TaxRatePercent decimal.Decimal   `gorm:"column:tax_rate_percent;type:numeric(5,2);not null"`
	SubtotalCents  int64             `gorm:"column:subtotal_cents;not null"`
	TaxCents       int64             `gorm:"column:tax_cents;not null"`
	TotalCents     int64             `gorm:"column:total_cents;not null"`
	ValidUntil     time.Time         `gorm:"column:valid_until;not null"`
	Notes          *string           `gorm:"column:notes"`
	Terms          *string           `gorm:"column:terms"`
	Lines          []QuoteLine       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

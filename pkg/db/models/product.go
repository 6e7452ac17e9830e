package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog listing. PriceCents is the live catalog price;
// order and quote lines copy it at selection time so later edits never touch
// placed records.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Category    string    `gorm:"column:category;not null"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Unit        string    `gorm:"column:unit;not null"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	Description string    `gorm:"column:description"`
	ImageURL    *string   `gorm:"column:image_url"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/pkg/enums"
)

// Document holds metadata for an externally stored file. The blob itself
// lives with the storage collaborator; only the pointer is owned here.
type Document struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID        uuid.UUID          `gorm:"column:company_id;type:uuid;not null;index"`
	Name             string             `gorm:"column:name;not null"`
	Type             enums.DocumentType `gorm:"column:type;type:text;not null;default:'other'"`
	URL              string             `gorm:"column:url;not null"`
	SizeBytes        int64              `gorm:"column:size_bytes;not null;default:0"`
	UploadedByUserID uuid.UUID          `gorm:"column:uploaded_by_user_id;type:uuid;not null"`
	MarketID         *uuid.UUID         `gorm:"column:market_id;type:uuid"`
	OrderID          *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/pkg/enums"
)

// Order is an immutable snapshot of a submitted draft. Only Status (and its
// timestamps) changes after creation; Version guards concurrent status
// writers optimistically.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID         `gorm:"column:company_id;type:uuid;not null;index"`
	MarketID    uuid.UUID         `gorm:"column:market_id;type:uuid;not null;index"`
	MarketName  string            `gorm:"column:market_name;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalCents  int64             `gorm:"column:total_cents;not null"`
	Notes       *string           `gorm:"column:notes"`
	Version     int               `gorm:"column:version;not null;default:1"`
	Lines       []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt *time.Time        `gorm:"column:confirmed_at"`
	DeliveredAt *time.Time        `gorm:"column:delivered_at"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

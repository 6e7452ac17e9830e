package models

import "github.com/google/uuid"

// QuoteLine is the quote counterpart of OrderLine.
type QuoteLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID        uuid.UUID `gorm:"column:quote_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Unit           string    `gorm:"column:unit;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
}

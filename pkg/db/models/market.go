package models

import (
	"time"

	"github.com/google/uuid"
)

// Market is a partner storefront that orders against a company's catalog.
type Market struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Owner     string    `gorm:"column:owner;not null"`
	Address   string    `gorm:"column:address"`
	Phone     string    `gorm:"column:phone"`
	Email     string    `gorm:"column:email"`
	CNPJ      string    `gorm:"column:cnpj"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

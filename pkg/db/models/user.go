package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
)

// User represents the canonical identity entity. Market-role users are bound
// to exactly one market via MarketID; company-wide roles leave it nil.
type User struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Name         string            `gorm:"column:name;not null"`
	Role         enums.Role        `gorm:"column:role;type:text;not null"`
	CompanyID    *uuid.UUID        `gorm:"column:company_id;type:uuid"`
	MarketID     *uuid.UUID        `gorm:"column:market_id;type:uuid"`
	Permissions  types.Permissions `gorm:"column:permissions;type:jsonb;serializer:json"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

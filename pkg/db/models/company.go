package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/coopmercado/coopmercado-backend/pkg/types"
)

// Company is the tenant entity; every scoped record hangs off its ID.
type Company struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string                 `gorm:"column:name;not null"`
	LogoURL   *string                `gorm:"column:logo_url"`
	Theme     types.CompanyTheme     `gorm:"column:theme;type:jsonb;serializer:json"`
	Settings  types.BusinessSettings `gorm:"column:settings;type:jsonb;serializer:json"`
	Features  pq.StringArray         `gorm:"column:features;type:text[]"`
	IsActive  bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

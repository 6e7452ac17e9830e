package companies

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
	"github.com/google/uuid"
)

// CompanyDTO is the API shape of the tenant profile.
type CompanyDTO struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	LogoURL   *string                `json:"logo_url,omitempty"`
	Theme     types.CompanyTheme     `json:"theme"`
	Settings  types.BusinessSettings `json:"settings"`
	Features  []string               `json:"features,omitempty"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ToDTO converts a company model to its API shape.
func ToDTO(company *models.Company) CompanyDTO {
	return CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		LogoURL:   company.LogoURL,
		Theme:     company.Theme,
		Settings:  company.Settings,
		Features:  company.Features,
		IsActive:  company.IsActive,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	}
}

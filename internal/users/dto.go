package users

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
	"github.com/google/uuid"
)

// UserDTO is the API shape of an account. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	CompanyID   *uuid.UUID        `json:"company_id,omitempty"`
	MarketID    *uuid.UUID        `json:"market_id,omitempty"`
	Permissions types.Permissions `json:"permissions,omitempty"`
	IsActive    bool              `json:"is_active"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToDTO converts a user model to its API shape.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role.String(),
		CompanyID:   user.CompanyID,
		MarketID:    user.MarketID,
		Permissions: user.Permissions,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

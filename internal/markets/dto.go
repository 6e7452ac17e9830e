package markets

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
)

// MarketDTO is the API shape of a market.
type MarketDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CNPJ      string    `json:"cnpj,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTO converts a market model to its API shape.
func ToDTO(market *models.Market) MarketDTO {
	return MarketDTO{
		ID:        market.ID,
		Name:      market.Name,
		Owner:     market.Owner,
		Address:   market.Address,
		Phone:     market.Phone,
		Email:     market.Email,
		CNPJ:      market.CNPJ,
		CreatedAt: market.CreatedAt,
		UpdatedAt: market.UpdatedAt,
	}
}

// ToDTOs converts a market slice to its API shape.
func ToDTOs(records []models.Market) []MarketDTO {
	out := make([]MarketDTO, 0, len(records))
	for i := range records {
		out = append(out, ToDTO(&records[i]))
	}
	return out
}

package auth

import (
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	CompanyID *uuid.UUID
	MarketID  *uuid.UUID
	Role      enums.Role
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID  `json:"user_id"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	MarketID  *uuid.UUID `json:"market_id,omitempty"`
	Role      enums.Role `json:"role"`
	jwt.RegisteredClaims
}

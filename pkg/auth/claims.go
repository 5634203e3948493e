package auth

import (
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Role      enums.Role
	Email     string
}

// AccessTokenClaims represents the typed JWT issued to clients. The account id
// travels in the registered subject claim.
type AccessTokenClaims struct {
	Role  enums.Role `json:"role"`
	Email string     `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller resolved from a token.
type Identity struct {
	AccountID uuid.UUID
	Role      enums.Role
	Email     string
}

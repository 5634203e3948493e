package auth

import (
	"strings"

	"github.com/angelmondragon/storerate-backend/internal/users"
)

// SignupRequest is the self-service registration payload. Signups always
// receive the USER role.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Address  string `json:"address" validate:"max=400"`
	Password string `json:"password" validate:"required,password"`
}

// Normalize trims the free-text fields so length rules see the stored value.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Email = strings.TrimSpace(r.Email)
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest replaces the caller's password after verifying the old one.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	Token   string            `json:"token"`
	Account *users.AccountDTO `json:"account"`
}

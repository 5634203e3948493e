package directory

import (
	"strings"

	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/internal/users"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	"github.com/google/uuid"
)

// AccountFilter is the admin account search.
type AccountFilter struct {
	Name    string
	Email   string
	Address string
	Role    string
	SortBy  string
	Order   string
}

// StoreFilter is the admin store search.
type StoreFilter struct {
	Name    string
	Email   string
	Address string
	SortBy  string
	Order   string
}

// StoreRowDTO is one store in the admin listing.
type StoreRowDTO struct {
	stores.StoreDTO
	Rating *float64 `json:"rating"`
}

// AccountDetailDTO is the admin account view. Owner fields are only set for
// OWNER accounts.
type AccountDetailDTO struct {
	users.AccountDTO
	Stores             []stores.StoreDTO `json:"stores,omitempty"`
	OwnerAverageRating *float64          `json:"owner_average_rating,omitempty"`
}

// CreateAccountInput is an admin-created account of any role.
type CreateAccountInput struct {
	Name     string     `json:"name" validate:"required,min=20,max=60"`
	Email    string     `json:"email" validate:"required,email,max=254"`
	Address  string     `json:"address" validate:"max=400"`
	Password string     `json:"password" validate:"required,password"`
	Role     enums.Role `json:"role" validate:"required,oneof=ADMIN OWNER USER"`
}

// Normalize trims the free-text fields so length rules see the stored value.
func (in *CreateAccountInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.TrimSpace(in.Email)
}

// CreateStoreInput is an admin-created store with an optional owner.
type CreateStoreInput struct {
	Name    string     `json:"name" validate:"required,min=1,max=60"`
	Email   string     `json:"email" validate:"required,email,max=254"`
	Address string     `json:"address" validate:"max=400"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

// Normalize trims the free-text fields so length rules see the stored value.
func (in *CreateStoreInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.TrimSpace(in.Email)
}

// MetricsDTO holds the global platform counts.
type MetricsDTO struct {
	Users   int64 `json:"users"`
	Stores  int64 `json:"stores"`
	Ratings int64 `json:"ratings"`
}

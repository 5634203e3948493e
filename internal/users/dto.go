package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
)

// AccountDTO is the transport shape that omits sensitive credentials.
type AccountDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new account.
type CreateUserDTO struct {
	Name         string
	Email        string
	Address      string
	PasswordHash string
	Role         enums.Role
}

// ListFilter narrows an account listing. Empty strings mean "any"; Role is
// matched exactly when set.
type ListFilter struct {
	Name    string
	Email   string
	Address string
	Role    enums.Role
	Sort    repo.Sort
}

// SortColumns is the allow-list of sortable account fields.
var SortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"address":    "address",
	"role":       "role",
	"created_at": "created_at",
}

func FromModel(u *models.User) *AccountDTO {
	if u == nil {
		return nil
	}
	return &AccountDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}
	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		Address:      c.Address,
		PasswordHash: c.PasswordHash,
		Role:         role,
	}
}

// NormalizeEmail is the stored form of an email: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

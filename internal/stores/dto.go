package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateStoreDTO holds the data required to persist a new store.
type CreateStoreDTO struct {
	Name    string
	Email   string
	Address string
	OwnerID *uuid.UUID
}

// ListFilter narrows a store listing. Empty strings mean "any".
type ListFilter struct {
	Name    string
	Email   string
	Address string
	Sort    repo.Sort
}

// SortRating is the computed sort field; it has no column and is ordered in memory.
const SortRating = "rating"

// SortColumns is the allow-list of sortable store fields for admins.
var SortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"address":    "address",
	"created_at": "created_at",
	SortRating:   SortRating,
}

func FromModel(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Address:   s.Address,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
	}
}

func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		OwnerID: c.OwnerID,
	}
}

// IDs returns the ids of rows, in order.
func IDs(rows []models.Store) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

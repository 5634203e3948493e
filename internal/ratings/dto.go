package ratings

import (
	"time"

	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	"github.com/google/uuid"
)

// RatingDTO is the transport shape of a stored rating.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	UserID    uuid.UUID `json:"user_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreStat is the raw per-store aggregate read from the ratings table.
type StoreStat struct {
	StoreID uuid.UUID
	Total   int64
	Count   int64
}

func FromModel(r *models.Rating) *RatingDTO {
	if r == nil {
		return nil
	}
	return &RatingDTO{
		ID:        r.ID,
		StoreID:   r.StoreID,
		UserID:    r.UserID,
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

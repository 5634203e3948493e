package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RatingMin and RatingMax bound a rating value, inclusive.
	RatingMin = 1
	RatingMax = 5

	// RatingUserStoreIndex enforces one rating per (user, store).
	RatingUserStoreIndex = "idx_ratings_user_store"
)

// Rating is a single account's score for a single store.
type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Value     int       `gorm:"column:value;not null;check:chk_ratings_value,value >= 1 AND value <= 5"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ratings_user_store,priority:1"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_ratings_user_store,priority:2;index:idx_ratings_store_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{&User{}, &Store{}, &Rating{}}
}

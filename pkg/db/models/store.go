package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a rateable business, optionally owned by an OWNER account.
type Store struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;type:varchar(60);not null"`
	Email     string     `gorm:"column:email;type:text;not null;uniqueIndex:idx_stores_email"`
	Address   string     `gorm:"column:address;type:varchar(400);not null;default:''"`
	OwnerID   *uuid.UUID `gorm:"column:owner_id;type:uuid;index:idx_stores_owner_id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

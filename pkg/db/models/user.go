package models

import (
	"time"

	"github.com/angelmondragon/storerate-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account row behind every login, whatever its role.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"column:name;type:varchar(60);not null"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	Address      string     `gorm:"column:address;type:varchar(400);not null;default:''"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;type:varchar(16);not null;default:'USER'"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key client side so every driver behaves alike.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

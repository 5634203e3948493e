package repo

import (
	"context"

	"github.com/angelmondragon/storerate-backend/pkg/db"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any). A
// transaction opened by db.Client.WithTx takes precedence over the pool.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

// Count returns the number of rows in model's table.
func (b Base) Count(ctx context.Context, model any) (int64, error) {
	var total int64
	err := b.DB(ctx).Model(model).Count(&total).Error
	return total, err
}

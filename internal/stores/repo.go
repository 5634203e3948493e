package stores

import (
	"context"

	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles store persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.DB(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns all stores owned by the provided account, by name.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	if err := r.DB(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Order("id ASC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// List returns stores matching filter in the filter's order. A computed sort
// field falls back to id order; callers reorder in memory.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Store, error) {
	q := r.DB(ctx).Model(&models.Store{})
	q = repo.ContainsFold(q, "name", filter.Name)
	q = repo.ContainsFold(q, "email", filter.Email)
	q = repo.ContainsFold(q, "address", filter.Address)

	sort := filter.Sort
	if sort.Field == SortRating || sort.Column == "" {
		sort = repo.Sort{Field: "id", Column: "id"}
	}

	var rows []models.Store
	if err := sort.Apply(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of stores.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.Base.Count(ctx, &models.Store{})
}

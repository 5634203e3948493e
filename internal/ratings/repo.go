package ratings

import (
	"context"

	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles rating persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to rating operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Find returns the rating userID gave storeID.
func (r *Repository) Find(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.DB(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// Create inserts a new rating row.
func (r *Repository) Create(ctx context.Context, rating *models.Rating) error {
	return r.DB(ctx).Create(rating).Error
}

// UpdateValue overwrites the value of an existing rating in place.
func (r *Repository) UpdateValue(ctx context.Context, rating *models.Rating, value int) error {
	return r.DB(ctx).Model(rating).Update("value", value).Error
}

// StatsByStore sums and counts ratings per store for the given ids. Stores
// without ratings are absent from the result.
func (r *Repository) StatsByStore(ctx context.Context, storeIDs []uuid.UUID) ([]StoreStat, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var rows []StoreStat
	err := r.DB(ctx).
		Model(&models.Rating{}).
		Select("store_id, COALESCE(SUM(value), 0) AS total, COUNT(*) AS count").
		Where("store_id IN ?", storeIDs).
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ValuesByUser returns userID's rating value per store, for the given stores.
func (r *Repository) ValuesByUser(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(storeIDs))
	if len(storeIDs) == 0 {
		return out, nil
	}
	var rows []models.Rating
	if err := r.DB(ctx).
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StoreID] = row.Value
	}
	return out, nil
}

// ListForStores returns every rating of the given stores, oldest first.
func (r *Repository) ListForStores(ctx context.Context, storeIDs []uuid.UUID) ([]models.Rating, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var rows []models.Rating
	if err := r.DB(ctx).
		Where("store_id IN ?", storeIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of ratings.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.Base.Count(ctx, &models.Rating{})
}

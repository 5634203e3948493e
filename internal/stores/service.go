package stores

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/google/uuid"
)

type storeRepository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
}

type ratingRepository interface {
	ListForStores(ctx context.Context, storeIDs []uuid.UUID) ([]models.Rating, error)
}

type accountLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// Catalog serves the rater-facing store list and the owner dashboard.
type Catalog interface {
	ListForRater(ctx context.Context, accountID uuid.UUID, query RaterQuery) ([]RaterStoreDTO, error)
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboardDTO, error)
}

// CatalogParams wires the catalog's collaborators.
type CatalogParams struct {
	Stores   storeRepository
	Ratings  ratingRepository
	Accounts accountLookup
	Ledger   ratings.Ledger
}

type catalog struct {
	stores   storeRepository
	ratings  ratingRepository
	accounts accountLookup
	ledger   ratings.Ledger
}

// NewCatalog builds the store catalog service.
func NewCatalog(params CatalogParams) (Catalog, error) {
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account lookup required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("rating ledger required")
	}
	return &catalog{
		stores:   params.Stores,
		ratings:  params.Ratings,
		accounts: params.Accounts,
		ledger:   params.Ledger,
	}, nil
}

// RaterQuery is the user-facing store search.
type RaterQuery struct {
	Query   string
	Address string
	SortBy  string
	Order   string
}

// RaterStoreDTO is one store as seen by an authenticated rater.
type RaterStoreDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	OverallRating *float64  `json:"overall_rating"`
	MyRating      *int      `json:"my_rating"`
}

// RaterDTO identifies who left a rating.
type RaterDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ReceivedRatingDTO is one rating on an owner's store.
type ReceivedRatingDTO struct {
	ID        uuid.UUID `json:"id"`
	Value     int       `json:"value"`
	User      RaterDTO  `json:"user"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedStoreDTO is one store in the owner dashboard.
type OwnedStoreDTO struct {
	StoreID       uuid.UUID           `json:"store_id"`
	StoreName     string              `json:"store_name"`
	AverageRating *float64            `json:"average_rating"`
	RatingCount   int64               `json:"rating_count"`
	Ratings       []ReceivedRatingDTO `json:"ratings"`
}

// OwnerDashboardDTO is the owner's view across every store they own.
type OwnerDashboardDTO struct {
	AverageRating *float64        `json:"average_rating"`
	Stores        []OwnedStoreDTO `json:"stores"`
}

func (c *catalog) ListForRater(ctx context.Context, accountID uuid.UUID, query RaterQuery) ([]RaterStoreDTO, error) {
	order, err := repo.ParseSort(query.SortBy, query.Order, SortColumns, "name")
	if err != nil {
		return nil, err
	}

	rows, err := c.stores.List(ctx, ListFilter{Name: query.Query, Address: query.Address, Sort: order})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	ids := IDs(rows)

	summaries, err := c.ledger.SummariesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	mine, err := c.ledger.MyRatings(ctx, accountID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RaterStoreDTO, 0, len(rows))
	for _, row := range rows {
		dto := RaterStoreDTO{
			ID:            row.ID,
			Name:          row.Name,
			Address:       row.Address,
			OverallRating: summaries[row.ID].Average,
		}
		if value, ok := mine[row.ID]; ok {
			v := value
			dto.MyRating = &v
		}
		out = append(out, dto)
	}

	if order.Field == SortRating {
		SortByRating(out, func(s RaterStoreDTO) *float64 { return s.OverallRating }, order.Desc)
	}
	return out, nil
}

func (c *catalog) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboardDTO, error) {
	owned, err := c.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned stores")
	}
	ids := IDs(owned)

	summaries, err := c.ledger.SummariesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	portfolio, err := c.ledger.AverageAcrossStores(ctx, ids)
	if err != nil {
		return nil, err
	}

	received, err := c.ratings.ListForStores(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ratings")
	}
	raterIDs := make([]uuid.UUID, 0, len(received))
	for _, rating := range received {
		raterIDs = append(raterIDs, rating.UserID)
	}
	raters, err := c.accounts.FindByIDs(ctx, raterIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load raters")
	}

	byStore := make(map[uuid.UUID][]ReceivedRatingDTO, len(owned))
	for _, rating := range received {
		rater := raters[rating.UserID]
		byStore[rating.StoreID] = append(byStore[rating.StoreID], ReceivedRatingDTO{
			ID:        rating.ID,
			Value:     rating.Value,
			User:      RaterDTO{ID: rating.UserID, Name: rater.Name, Email: rater.Email},
			UpdatedAt: rating.UpdatedAt,
		})
	}

	dashboard := &OwnerDashboardDTO{
		AverageRating: portfolio,
		Stores:        make([]OwnedStoreDTO, 0, len(owned)),
	}
	for _, store := range owned {
		list := byStore[store.ID]
		if list == nil {
			list = []ReceivedRatingDTO{}
		}
		dashboard.Stores = append(dashboard.Stores, OwnedStoreDTO{
			StoreID:       store.ID,
			StoreName:     store.Name,
			AverageRating: summaries[store.ID].Average,
			RatingCount:   summaries[store.ID].Count,
			Ratings:       list,
		})
	}
	return dashboard, nil
}

// SortByRating orders items by their rating, keeping unrated items last in
// either direction. The sort is stable so ties keep their incoming order.
func SortByRating[T any](items []T, rating func(T) *float64, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := rating(items[i]), rating(items[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case desc:
			return *a > *b
		default:
			return *a < *b
		}
	})
}

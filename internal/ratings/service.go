package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storerate-backend/pkg/db"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
	"github.com/angelmondragon/storerate-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ratingRepository interface {
	Find(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error)
	Create(ctx context.Context, rating *models.Rating) error
	UpdateValue(ctx context.Context, rating *models.Rating, value int) error
	StatsByStore(ctx context.Context, storeIDs []uuid.UUID) ([]StoreStat, error)
	ValuesByUser(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// countsCache is the slice of the Redis client used to drop cached totals
// once a new rating row exists.
type countsCache interface {
	Del(ctx context.Context, keys ...string) error
	AdminMetricsKey() string
}

type storeLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Ledger owns the one-rating-per-account-per-store rule and every aggregate
// derived from ratings.
type Ledger interface {
	// Submit creates or overwrites accountID's rating of storeID. created
	// reports whether a new row was inserted.
	Submit(ctx context.Context, accountID, storeID uuid.UUID, value int) (*RatingDTO, bool, error)
	AverageFor(ctx context.Context, storeID uuid.UUID) (*float64, error)
	AverageAcrossStores(ctx context.Context, storeIDs []uuid.UUID) (*float64, error)
	MyRating(ctx context.Context, accountID, storeID uuid.UUID) (*int, error)
	SummariesFor(ctx context.Context, storeIDs []uuid.UUID) (map[uuid.UUID]Summary, error)
	MyRatings(ctx context.Context, accountID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// LedgerParams wires the ledger's collaborators. Cache, Metrics and Logger
// are optional.
type LedgerParams struct {
	Repo    ratingRepository
	Stores  storeLookup
	Cache   countsCache
	Metrics *metrics.RatingMetrics
	Logger  *logger.Logger
}

type ledger struct {
	repo    ratingRepository
	stores  storeLookup
	cache   countsCache
	metrics *metrics.RatingMetrics
	logg    *logger.Logger
}

// NewLedger builds a rating ledger.
func NewLedger(params LedgerParams) (Ledger, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rating repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store lookup required")
	}
	return &ledger{
		repo:    params.Repo,
		stores:  params.Stores,
		cache:   params.Cache,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (l *ledger) Submit(ctx context.Context, accountID, storeID uuid.UUID, value int) (*RatingDTO, bool, error) {
	if value < models.RatingMin || value > models.RatingMax {
		return nil, false, pkgerrors.Invalid("value", fmt.Sprintf("rating must be between %d and %d", models.RatingMin, models.RatingMax))
	}

	if _, err := l.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}

	existing, err := l.repo.Find(ctx, accountID, storeID)
	switch {
	case err == nil:
		if err := l.repo.UpdateValue(ctx, existing, value); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rating")
		}
		l.metrics.IncSubmission(metrics.OutcomeUpdated)
		return FromModel(existing), false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating")
	}

	rating := &models.Rating{UserID: accountID, StoreID: storeID, Value: value}
	err = l.repo.Create(ctx, rating)
	if err == nil {
		l.metrics.IncSubmission(metrics.OutcomeCreated)
		l.invalidateCounts(ctx)
		return FromModel(rating), true, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rating")
	}

	// A concurrent submission for the same pair won the insert; overwrite it.
	if l.logg != nil {
		l.logg.Warn(l.logg.WithField(ctx, "store_id", storeID.String()), "rating.insert_conflict")
	}
	existing, err = l.repo.Find(ctx, accountID, storeID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "rating changed concurrently, retry")
	}
	if err := l.repo.UpdateValue(ctx, existing, value); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rating")
	}
	l.metrics.IncSubmission(metrics.OutcomeConflictRetry)
	return FromModel(existing), false, nil
}

func (l *ledger) invalidateCounts(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Del(ctx, l.cache.AdminMetricsKey()); err != nil && l.logg != nil {
		l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "rating.cache_invalidate_failed")
	}
}

func (l *ledger) AverageFor(ctx context.Context, storeID uuid.UUID) (*float64, error) {
	summaries, err := l.SummariesFor(ctx, []uuid.UUID{storeID})
	if err != nil {
		return nil, err
	}
	return summaries[storeID].Average, nil
}

func (l *ledger) AverageAcrossStores(ctx context.Context, storeIDs []uuid.UUID) (*float64, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	stats, err := l.repo.StatsByStore(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate ratings")
	}
	return Pooled(stats), nil
}

func (l *ledger) MyRating(ctx context.Context, accountID, storeID uuid.UUID) (*int, error) {
	rating, err := l.repo.Find(ctx, accountID, storeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating")
	}
	value := rating.Value
	return &value, nil
}

func (l *ledger) SummariesFor(ctx context.Context, storeIDs []uuid.UUID) (map[uuid.UUID]Summary, error) {
	stats, err := l.repo.StatsByStore(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate ratings")
	}
	return Summarize(stats), nil
}

func (l *ledger) MyRatings(ctx context.Context, accountID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	values, err := l.repo.ValuesByUser(ctx, accountID, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ratings")
	}
	return values, nil
}

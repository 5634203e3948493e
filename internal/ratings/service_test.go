package ratings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ledger ratings.Ledger
	repo   *ratings.Repository
	stores *stores.Repository
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	ratingRepo := ratings.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	ledger, err := ratings.NewLedger(ratings.LedgerParams{
		Repo:    ratingRepo,
		Stores:  storeRepo,
		Metrics: metrics.NewRatingMetrics(reg),
	})
	require.NoError(t, err)
	return fixture{ledger: ledger, repo: ratingRepo, stores: storeRepo, reg: reg}
}

func (f fixture) store(t *testing.T, email string) uuid.UUID {
	t.Helper()
	store, err := f.stores.Create(context.Background(), stores.CreateStoreDTO{Name: "Store " + email, Email: email})
	require.NoError(t, err)
	return store.ID
}

func TestNewLedgerRequiresDependencies(t *testing.T) {
	_, err := ratings.NewLedger(ratings.LedgerParams{})
	assert.Error(t, err)
	_, err = ratings.NewLedger(ratings.LedgerParams{Repo: &stubRepo{}})
	assert.Error(t, err)
}

func TestSubmitCreatesThenOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	storeID := f.store(t, "s@example.com")
	accountID := uuid.New()

	first, created, err := f.ledger.Submit(ctx, accountID, storeID, 4)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 4, first.Value)

	second, created, err := f.ledger.Submit(ctx, accountID, storeID, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Value)

	total, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "one row per account and store")

	mine, err := f.ledger.MyRating(ctx, accountID, storeID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, 2, *mine)

	avg, err := f.ledger.AverageFor(ctx, storeID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 2.0, *avg)

	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Len(t, mfs[0].GetMetric(), 2, "created and updated outcomes")
}

func TestSubmitRejectsOutOfRangeBeforeTouchingStorage(t *testing.T) {
	repo := &stubRepo{}
	lookup := &stubStores{}
	ledger, err := ratings.NewLedger(ratings.LedgerParams{Repo: repo, Stores: lookup})
	require.NoError(t, err)

	for _, value := range []int{0, 6, -1} {
		_, _, err := ledger.Submit(context.Background(), uuid.New(), uuid.New(), value)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "value %d", value)
	}
	assert.Zero(t, lookup.calls)
	assert.Zero(t, repo.findCalls)
	assert.Zero(t, repo.createCalls)
}

func TestSubmitUnknownStoreIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.ledger.Submit(context.Background(), uuid.New(), uuid.New(), 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSubmitFallsBackToUpdateOnInsertConflict(t *testing.T) {
	existing := &models.Rating{ID: uuid.New(), Value: 1}
	repo := &stubRepo{
		findResults: []findResult{
			{err: gorm.ErrRecordNotFound},
			{rating: existing},
		},
		createErr: errors.New("UNIQUE constraint failed: ratings.user_id, ratings.store_id"),
	}
	ledger, err := ratings.NewLedger(ratings.LedgerParams{Repo: repo, Stores: &stubStores{}})
	require.NoError(t, err)

	got, created, err := ledger.Submit(context.Background(), uuid.New(), uuid.New(), 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, 5, got.Value)
	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestSubmitSurfacesUnexpectedCreateErrors(t *testing.T) {
	repo := &stubRepo{
		findResults: []findResult{{err: gorm.ErrRecordNotFound}},
		createErr:   errors.New("disk full"),
	}
	ledger, err := ratings.NewLedger(ratings.LedgerParams{Repo: repo, Stores: &stubStores{}})
	require.NoError(t, err)

	_, _, err = ledger.Submit(context.Background(), uuid.New(), uuid.New(), 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestAggregatesAcrossAccountsAndStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.store(t, "a@example.com")
	b := f.store(t, "b@example.com")
	unrated := f.store(t, "c@example.com")

	for _, value := range []int{1, 2, 2} {
		_, _, err := f.ledger.Submit(ctx, uuid.New(), a, value)
		require.NoError(t, err)
	}
	for _, value := range []int{3, 5} {
		_, _, err := f.ledger.Submit(ctx, uuid.New(), b, value)
		require.NoError(t, err)
	}

	summaries, err := f.ledger.SummariesFor(ctx, []uuid.UUID{a, b, unrated})
	require.NoError(t, err)
	assert.Equal(t, 1.6667, *summaries[a].Average)
	assert.Equal(t, int64(3), summaries[a].Count)
	assert.Equal(t, 4.0, *summaries[b].Average)
	assert.Nil(t, summaries[unrated].Average)

	none, err := f.ledger.AverageFor(ctx, unrated)
	require.NoError(t, err)
	assert.Nil(t, none)

	pooled, err := f.ledger.AverageAcrossStores(ctx, []uuid.UUID{a, b})
	require.NoError(t, err)
	require.NotNil(t, pooled)
	assert.Equal(t, 2.6, *pooled)

	empty, err := f.ledger.AverageAcrossStores(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestMyRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.store(t, "a@example.com")
	b := f.store(t, "b@example.com")
	me := uuid.New()

	_, _, err := f.ledger.Submit(ctx, me, a, 3)
	require.NoError(t, err)
	_, _, err = f.ledger.Submit(ctx, uuid.New(), b, 5)
	require.NoError(t, err)

	mine, err := f.ledger.MyRatings(ctx, me, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{a: 3}, mine)

	none, err := f.ledger.MyRating(ctx, me, b)
	require.NoError(t, err)
	assert.Nil(t, none)
}

type findResult struct {
	rating *models.Rating
	err    error
}

type stubRepo struct {
	findResults []findResult
	createErr   error

	findCalls   int
	createCalls int
	updateCalls int
}

func (s *stubRepo) Find(context.Context, uuid.UUID, uuid.UUID) (*models.Rating, error) {
	s.findCalls++
	if len(s.findResults) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	next := s.findResults[0]
	s.findResults = s.findResults[1:]
	return next.rating, next.err
}

func (s *stubRepo) Create(_ context.Context, rating *models.Rating) error {
	s.createCalls++
	return s.createErr
}

func (s *stubRepo) UpdateValue(_ context.Context, rating *models.Rating, value int) error {
	s.updateCalls++
	rating.Value = value
	return nil
}

func (s *stubRepo) StatsByStore(context.Context, []uuid.UUID) ([]ratings.StoreStat, error) {
	return nil, nil
}

func (s *stubRepo) ValuesByUser(context.Context, uuid.UUID, []uuid.UUID) (map[uuid.UUID]int, error) {
	return map[uuid.UUID]int{}, nil
}

type stubStores struct {
	calls int
}

func (s *stubStores) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	s.calls++
	return &models.Store{ID: id}, nil
}

type recordingCache struct {
	deleted []string
}

func (c *recordingCache) Del(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func (c *recordingCache) AdminMetricsKey() string { return "storerate:cache:admin:metrics" }

func TestSubmitDropsCachedCountsOnlyForNewRows(t *testing.T) {
	conn := dbtest.Open(t)
	storeRepo := stores.NewRepository(conn)
	cache := &recordingCache{}
	ledger, err := ratings.NewLedger(ratings.LedgerParams{
		Repo:   ratings.NewRepository(conn),
		Stores: storeRepo,
		Cache:  cache,
	})
	require.NoError(t, err)

	ctx := context.Background()
	store, err := storeRepo.Create(ctx, stores.CreateStoreDTO{Name: "Cached", Email: "cached@example.com"})
	require.NoError(t, err)
	accountID := uuid.New()

	_, created, err := ledger.Submit(ctx, accountID, store.ID, 3)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, []string{"storerate:cache:admin:metrics"}, cache.deleted)

	_, created, err = ledger.Submit(ctx, accountID, store.ID, 4)
	require.NoError(t, err)
	require.False(t, created)
	assert.Len(t, cache.deleted, 1, "overwrites leave the totals unchanged")
}

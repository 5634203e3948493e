package stores

import (
	"context"
	"testing"

	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/users"
	"github.com/angelmondragon/storerate-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	catalog Catalog
	ledger  ratings.Ledger
	stores  *Repository
	users   *users.Repository
}

func newCatalogFixture(t *testing.T) catalogFixture {
	t.Helper()
	conn := dbtest.Open(t)
	storeRepo := NewRepository(conn)
	ratingRepo := ratings.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	ledger, err := ratings.NewLedger(ratings.LedgerParams{Repo: ratingRepo, Stores: storeRepo})
	require.NoError(t, err)
	catalog, err := NewCatalog(CatalogParams{Stores: storeRepo, Ratings: ratingRepo, Accounts: userRepo, Ledger: ledger})
	require.NoError(t, err)
	return catalogFixture{catalog: catalog, ledger: ledger, stores: storeRepo, users: userRepo}
}

func (f catalogFixture) account(t *testing.T, name, email string, role enums.Role) uuid.UUID {
	t.Helper()
	user, err := f.users.Create(context.Background(), users.CreateUserDTO{Name: name, Email: email, PasswordHash: "h", Role: role})
	require.NoError(t, err)
	return user.ID
}

func (f catalogFixture) store(t *testing.T, name, email, address string, owner *uuid.UUID) uuid.UUID {
	t.Helper()
	store, err := f.stores.Create(context.Background(), CreateStoreDTO{Name: name, Email: email, Address: address, OwnerID: owner})
	require.NoError(t, err)
	return store.ID
}

func TestNewCatalogRequiresDependencies(t *testing.T) {
	_, err := NewCatalog(CatalogParams{})
	assert.Error(t, err)
}

func TestListForRaterCarriesOverallAndOwnRating(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	me := f.account(t, "Rating Person Number One", "me@example.com", enums.RoleUser)
	other := f.account(t, "Rating Person Number Two", "other@example.com", enums.RoleUser)

	cafe := f.store(t, "Cafe Central", "cafe@example.com", "10 Harbor Way", nil)
	deli := f.store(t, "Deli Downtown", "deli@example.com", "4 Hill Street", nil)
	f.store(t, "Empty Shop", "empty@example.com", "7 Harbor Way", nil)

	_, _, err := f.ledger.Submit(ctx, me, cafe, 5)
	require.NoError(t, err)
	_, _, err = f.ledger.Submit(ctx, other, cafe, 2)
	require.NoError(t, err)
	_, _, err = f.ledger.Submit(ctx, other, deli, 4)
	require.NoError(t, err)

	rows, err := f.catalog.ListForRater(ctx, me, RaterQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cafe Central", rows[0].Name, "default order is by name")
	assert.Equal(t, 3.5, *rows[0].OverallRating)
	require.NotNil(t, rows[0].MyRating)
	assert.Equal(t, 5, *rows[0].MyRating)
	assert.Nil(t, rows[1].MyRating)
	assert.Nil(t, rows[2].OverallRating)

	rows, err = f.catalog.ListForRater(ctx, me, RaterQuery{Address: "harbor", SortBy: "rating", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cafe Central", rows[0].Name)
	assert.Equal(t, "Empty Shop", rows[1].Name)

	rows, err = f.catalog.ListForRater(ctx, me, RaterQuery{Query: "DELI"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = f.catalog.ListForRater(ctx, me, RaterQuery{SortBy: "password_hash"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestOwnerDashboard(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	owner := f.account(t, "Owner Of Several Stores", "owner@example.com", enums.RoleOwner)
	rater := f.account(t, "Frequent Rater Person Name", "rater@example.com", enums.RoleUser)
	rival := f.account(t, "Owner Of Another Store X", "rival@example.com", enums.RoleOwner)

	mine := f.store(t, "Owner Store One", "one@example.com", "", &owner)
	quiet := f.store(t, "Owner Store Two", "two@example.com", "", &owner)
	theirs := f.store(t, "Rival Store", "rival-store@example.com", "", &rival)

	_, _, err := f.ledger.Submit(ctx, rater, mine, 4)
	require.NoError(t, err)
	_, _, err = f.ledger.Submit(ctx, owner, mine, 1)
	require.NoError(t, err)
	_, _, err = f.ledger.Submit(ctx, rater, theirs, 5)
	require.NoError(t, err)

	dashboard, err := f.catalog.OwnerDashboard(ctx, owner)
	require.NoError(t, err)
	require.Len(t, dashboard.Stores, 2)
	require.NotNil(t, dashboard.AverageRating)
	assert.Equal(t, 2.5, *dashboard.AverageRating)

	first := dashboard.Stores[0]
	assert.Equal(t, mine, first.StoreID)
	assert.Equal(t, int64(2), first.RatingCount)
	assert.Equal(t, 2.5, *first.AverageRating)
	require.Len(t, first.Ratings, 2)
	emails := []string{first.Ratings[0].User.Email, first.Ratings[1].User.Email}
	assert.ElementsMatch(t, []string{"rater@example.com", "owner@example.com"}, emails)

	second := dashboard.Stores[1]
	assert.Equal(t, quiet, second.StoreID)
	assert.Nil(t, second.AverageRating)
	assert.Empty(t, second.Ratings)

	empty, err := f.catalog.OwnerDashboard(ctx, rater)
	require.NoError(t, err)
	assert.Empty(t, empty.Stores)
	assert.Nil(t, empty.AverageRating)
}

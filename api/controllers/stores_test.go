package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storerate-backend/api/middleware"
	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	pkgAuth "github.com/angelmondragon/storerate-backend/pkg/auth"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubLedger struct {
	ratings.Ledger
	calls   int
	created bool
	gotUser uuid.UUID
}

func (s *stubLedger) Submit(ctx context.Context, accountID, storeID uuid.UUID, value int) (*ratings.RatingDTO, bool, error) {
	s.calls++
	s.gotUser = accountID
	return &ratings.RatingDTO{UserID: accountID, StoreID: storeID, Value: value}, s.created, nil
}

type stubCatalog struct {
	query stores.RaterQuery
}

func (s *stubCatalog) ListForRater(ctx context.Context, accountID uuid.UUID, query stores.RaterQuery) ([]stores.RaterStoreDTO, error) {
	s.query = query
	return []stores.RaterStoreDTO{}, nil
}

func (s *stubCatalog) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*stores.OwnerDashboardDTO, error) {
	return &stores.OwnerDashboardDTO{Stores: []stores.OwnedStoreDTO{}}, nil
}

func ratingRouter(ledger ratings.Ledger, accountID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithIdentity(req.Context(), pkgAuth.Identity{AccountID: accountID, Role: enums.RoleUser})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/stores/{id}/ratings", StoreSubmitRating(ledger, nil))
	return r
}

func TestStoreSubmitRatingStatusCodes(t *testing.T) {
	accountID := uuid.New()
	storeID := uuid.New()
	path := "/stores/" + storeID.String() + "/ratings"

	ledger := &stubLedger{created: true}
	resp := httptest.NewRecorder()
	ratingRouter(ledger, accountID).ServeHTTP(resp, postJSON(path, `{"value":5}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a new rating got %d", resp.Code)
	}
	if ledger.gotUser != accountID {
		t.Fatalf("expected rating for caller %s got %s", accountID, ledger.gotUser)
	}

	ledger.created = false
	resp = httptest.NewRecorder()
	ratingRouter(ledger, accountID).ServeHTTP(resp, postJSON(path, `{"value":3}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for an overwrite got %d", resp.Code)
	}
}

func TestStoreSubmitRatingRejectsBadInput(t *testing.T) {
	ledger := &stubLedger{}
	router := ratingRouter(ledger, uuid.New())
	valid := "/stores/" + uuid.NewString() + "/ratings"

	for _, tc := range []struct{ path, body string }{
		{valid, `{"value":0}`},
		{valid, `{"value":6}`},
		{valid, `{"value":3.5}`},
		{valid, `{"value":"4"}`},
		{valid, `{}`},
		{"/stores/nope/ratings", `{"value":3}`},
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, postJSON(tc.path, tc.body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400 got %d", tc.path, tc.body, resp.Code)
		}
	}
	if ledger.calls != 0 {
		t.Fatalf("ledger must not be called for invalid input, got %d calls", ledger.calls)
	}
}

func TestStoreListForwardsQuery(t *testing.T) {
	catalog := &stubCatalog{}
	req := httptest.NewRequest(http.MethodGet, "/stores?q=%20cafe%20&address=main&sortBy=rating&order=desc", nil)
	resp := httptest.NewRecorder()
	StoreList(catalog, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	want := stores.RaterQuery{Query: "cafe", Address: "main", SortBy: "rating", Order: "desc"}
	if catalog.query != want {
		t.Fatalf("expected %+v got %+v", want, catalog.query)
	}
}

func TestOwnerRatings(t *testing.T) {
	resp := httptest.NewRecorder()
	OwnerRatings(&stubCatalog{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/owner/ratings", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

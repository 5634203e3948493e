package controllers

import (
	"net/http"

	"github.com/angelmondragon/storerate-backend/api/middleware"
	"github.com/angelmondragon/storerate-backend/api/responses"
	"github.com/angelmondragon/storerate-backend/api/validators"
	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
)

const (
	queryMaxLen = 100
	sortMaxLen  = 32
)

// StoreList returns the store catalog with the caller's own rating per store.
func StoreList(svc stores.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store catalog unavailable"))
			return
		}

		query := stores.RaterQuery{
			Query:   validators.QueryString(r, "q", queryMaxLen),
			Address: validators.QueryString(r, "address", queryMaxLen),
			SortBy:  validators.QueryString(r, "sortBy", sortMaxLen),
			Order:   validators.QueryString(r, "order", sortMaxLen),
		}
		rows, err := svc.ListForRater(r.Context(), middleware.AccountIDFromContext(r.Context()), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type submitRatingRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

// StoreSubmitRating creates or replaces the caller's rating of a store.
// A first rating answers 201, an overwrite 200.
func StoreSubmitRating(svc ratings.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating ledger unavailable"))
			return
		}

		storeID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRatingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rating, created, err := svc.Submit(r.Context(), middleware.AccountIDFromContext(r.Context()), storeID, body.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, rating)
	}
}

// OwnerRatings returns the caller's stores with their received ratings.
func OwnerRatings(svc stores.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store catalog unavailable"))
			return
		}

		dashboard, err := svc.OwnerDashboard(r.Context(), middleware.AccountIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

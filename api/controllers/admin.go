package controllers

import (
	"net/http"

	"github.com/angelmondragon/storerate-backend/api/responses"
	"github.com/angelmondragon/storerate-backend/api/validators"
	"github.com/angelmondragon/storerate-backend/internal/directory"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
)

func directoryUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
}

// AdminCreateUser creates an account with any role.
func AdminCreateUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		var body directory.CreateAccountInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.CreateAccount(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

// AdminCreateStore creates a store, optionally assigned to an OWNER.
func AdminCreateStore(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		var body directory.CreateStoreInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.CreateStore(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// AdminListUsers lists accounts with filters and sorting from the query string.
func AdminListUsers(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		rows, err := svc.ListAccounts(r.Context(), directory.AccountFilter{
			Name:    validators.QueryString(r, "name", queryMaxLen),
			Email:   validators.QueryString(r, "email", queryMaxLen),
			Address: validators.QueryString(r, "address", queryMaxLen),
			Role:    validators.QueryString(r, "role", sortMaxLen),
			SortBy:  validators.QueryString(r, "sortBy", sortMaxLen),
			Order:   validators.QueryString(r, "order", sortMaxLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminListStores lists stores with their average rating.
func AdminListStores(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		rows, err := svc.ListStores(r.Context(), directory.StoreFilter{
			Name:    validators.QueryString(r, "name", queryMaxLen),
			Email:   validators.QueryString(r, "email", queryMaxLen),
			Address: validators.QueryString(r, "address", queryMaxLen),
			SortBy:  validators.QueryString(r, "sortBy", sortMaxLen),
			Order:   validators.QueryString(r, "order", sortMaxLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminGetUser returns one account; owners include their stores and average.
func AdminGetUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetAccount(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminMetrics returns the global account, store and rating counts.
func AdminMetrics(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			directoryUnavailable(w, r, logg)
			return
		}

		counts, err := svc.Metrics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

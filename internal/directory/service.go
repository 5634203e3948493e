package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/repo"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/internal/users"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/db"
	"github.com/angelmondragon/storerate-backend/pkg/db/models"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
	"github.com/angelmondragon/storerate-backend/pkg/security"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type accountRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter users.ListFilter) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type storeRepository interface {
	Create(ctx context.Context, dto stores.CreateStoreDTO) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
	List(ctx context.Context, filter stores.ListFilter) ([]models.Store, error)
	Count(ctx context.Context) (int64, error)
}

type ratingCounter interface {
	Count(ctx context.Context) (int64, error)
}

type metricsCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	AdminMetricsKey() string
}

type transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// defaultSortField orders listings by creation. Ids are random UUIDs, so the
// id column only serves as the tie-breaker.
const defaultSortField = "created_at"

// Service is the administrator's view of accounts and stores.
type Service interface {
	ListAccounts(ctx context.Context, filter AccountFilter) ([]users.AccountDTO, error)
	ListStores(ctx context.Context, filter StoreFilter) ([]StoreRowDTO, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountDetailDTO, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (*users.AccountDTO, error)
	CreateStore(ctx context.Context, input CreateStoreInput) (*stores.StoreDTO, error)
	Metrics(ctx context.Context) (*MetricsDTO, error)
}

// ServiceParams wires the directory. Tx, Cache and Logger are optional.
type ServiceParams struct {
	Tx             transactor
	Accounts       accountRepository
	Stores         storeRepository
	Ratings        ratingCounter
	Ledger         ratings.Ledger
	PasswordConfig config.PasswordConfig
	Cache          metricsCache
	CacheTTL       time.Duration
	Logger         *logger.Logger
}

type service struct {
	tx          transactor
	accounts    accountRepository
	stores      storeRepository
	ratings     ratingCounter
	ledger      ratings.Ledger
	passwordCfg config.PasswordConfig
	cache       metricsCache
	cacheTTL    time.Duration
	logg        *logger.Logger
}

// NewService builds the directory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating counter required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("rating ledger required")
	}
	return &service{
		tx:          params.Tx,
		accounts:    params.Accounts,
		stores:      params.Stores,
		ratings:     params.Ratings,
		ledger:      params.Ledger,
		passwordCfg: params.PasswordConfig,
		cache:       params.Cache,
		cacheTTL:    params.CacheTTL,
		logg:        params.Logger,
	}, nil
}

func (s *service) ListAccounts(ctx context.Context, filter AccountFilter) ([]users.AccountDTO, error) {
	order, err := repo.ParseSort(filter.SortBy, filter.Order, users.SortColumns, defaultSortField)
	if err != nil {
		return nil, err
	}
	var role enums.Role
	if filter.Role != "" {
		role, err = enums.ParseRole(filter.Role)
		if err != nil {
			return nil, pkgerrors.Invalid("role", "role must be one of "+roleChoices())
		}
	}

	rows, err := s.accounts.List(ctx, users.ListFilter{
		Name:    filter.Name,
		Email:   filter.Email,
		Address: filter.Address,
		Role:    role,
		Sort:    order,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list accounts")
	}

	out := make([]users.AccountDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListStores(ctx context.Context, filter StoreFilter) ([]StoreRowDTO, error) {
	order, err := repo.ParseSort(filter.SortBy, filter.Order, stores.SortColumns, defaultSortField)
	if err != nil {
		return nil, err
	}

	rows, err := s.stores.List(ctx, stores.ListFilter{
		Name:    filter.Name,
		Email:   filter.Email,
		Address: filter.Address,
		Sort:    order,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}

	summaries, err := s.ledger.SummariesFor(ctx, stores.IDs(rows))
	if err != nil {
		return nil, err
	}

	out := make([]StoreRowDTO, 0, len(rows))
	for i := range rows {
		out = append(out, StoreRowDTO{
			StoreDTO: *stores.FromModel(&rows[i]),
			Rating:   summaries[rows[i].ID].Average,
		})
	}
	if order.Field == stores.SortRating {
		stores.SortByRating(out, func(r StoreRowDTO) *float64 { return r.Rating }, order.Desc)
	}
	return out, nil
}

func (s *service) GetAccount(ctx context.Context, id uuid.UUID) (*AccountDetailDTO, error) {
	user, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}

	detail := &AccountDetailDTO{AccountDTO: *users.FromModel(user)}
	if user.Role != enums.RoleOwner {
		return detail, nil
	}

	owned, err := s.stores.FindByOwner(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned stores")
	}
	detail.Stores = make([]stores.StoreDTO, 0, len(owned))
	for i := range owned {
		detail.Stores = append(detail.Stores, *stores.FromModel(&owned[i]))
	}
	detail.OwnerAverageRating, err = s.ledger.AverageAcrossStores(ctx, stores.IDs(owned))
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) CreateAccount(ctx context.Context, input CreateAccountInput) (*users.AccountDTO, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.Invalid("role", "role must be one of "+roleChoices())
	}
	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.accounts.Create(ctx, users.CreateUserDTO{
		Name:         input.Name,
		Email:        users.NormalizeEmail(input.Email),
		Address:      input.Address,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}
	s.invalidateMetrics(ctx)
	return users.FromModel(user), nil
}

func (s *service) CreateStore(ctx context.Context, input CreateStoreInput) (*stores.StoreDTO, error) {
	var store *models.Store
	err := s.inTx(ctx, func(ctx context.Context) error {
		if input.OwnerID != nil {
			owner, err := s.accounts.FindByID(ctx, *input.OwnerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "owner account not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner")
			}
			if owner.Role != enums.RoleOwner {
				return pkgerrors.Invalid("owner_id", "owner must have the OWNER role")
			}
		}

		created, err := s.stores.Create(ctx, stores.CreateStoreDTO{
			Name:    input.Name,
			Email:   users.NormalizeEmail(input.Email),
			Address: input.Address,
			OwnerID: input.OwnerID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "store email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}
		store = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateMetrics(ctx)
	return stores.FromModel(store), nil
}

// inTx runs fn in a transaction when one is available.
func (s *service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithTx(ctx, fn)
}

func (s *service) Metrics(ctx context.Context) (*MetricsDTO, error) {
	var key string
	if s.cache != nil {
		key = s.cache.AdminMetricsKey()
		var cached MetricsDTO
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			s.warn(ctx, "metrics.cache_read_failed", err)
		case hit:
			return &cached, nil
		}
	}

	var out MetricsDTO
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Users, err = s.accounts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Stores, err = s.stores.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Ratings, err = s.ratings.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count records")
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, out, s.cacheTTL); err != nil {
			s.warn(ctx, "metrics.cache_write_failed", err)
		}
	}
	return &out, nil
}

func (s *service) invalidateMetrics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.AdminMetricsKey()); err != nil {
		s.warn(ctx, "metrics.cache_invalidate_failed", err)
	}
}

func roleChoices() string {
	names := make([]string, 0, len(enums.Roles()))
	for _, role := range enums.Roles() {
		names = append(names, role.String())
	}
	return strings.Join(names, ", ")
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

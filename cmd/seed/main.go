package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/storerate-backend/internal/directory"
	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/internal/users"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/db"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
	"github.com/angelmondragon/storerate-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

var seedAccounts = []directory.CreateAccountInput{
	{Name: "System Administrator", Email: "admin@example.com", Address: "Head Office", Password: "Admin@123", Role: enums.RoleAdmin},
	{Name: "Default Store Owner", Email: "owner@example.com", Address: "Owner Street", Password: "Owner@123", Role: enums.RoleOwner},
	{Name: "Normal User Sample", Email: "user@example.com", Address: "User Lane", Password: "User@123", Role: enums.RoleUser},
}

const ownerEmail = "owner@example.com"

var seedStore = directory.CreateStoreInput{Name: "Sample Store", Email: "store@example.com", Address: "123 Market Road"}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "schema", migrate.Up(ctx, dbClient))

	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	ratingRepo := ratings.NewRepository(dbClient.DB())
	ledger, err := ratings.NewLedger(ratings.LedgerParams{Repo: ratingRepo, Stores: storeRepo, Logger: logg})
	requireResource(ctx, logg, "rating ledger", err)
	svc, err := directory.NewService(directory.ServiceParams{
		Tx:             dbClient,
		Accounts:       userRepo,
		Stores:         storeRepo,
		Ratings:        ratingRepo,
		Ledger:         ledger,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	requireResource(ctx, logg, "directory service", err)

	if err := seed(ctx, logg, svc, userRepo); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "seed.complete")
}

func seed(ctx context.Context, logg *logger.Logger, svc directory.Service, userRepo *users.Repository) error {
	for _, input := range seedAccounts {
		_, err := svc.CreateAccount(ctx, input)
		switch {
		case err == nil:
			logg.Info(logg.WithField(ctx, "email", input.Email), "seed.account_created")
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			logg.Info(logg.WithField(ctx, "email", input.Email), "seed.account_exists")
		default:
			return fmt.Errorf("seed account %s: %w", input.Email, err)
		}
	}

	owner, err := userRepo.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return fmt.Errorf("load seeded owner: %w", err)
	}
	input := seedStore
	input.OwnerID = &owner.ID

	_, err = svc.CreateStore(ctx, input)
	switch {
	case err == nil:
		logg.Info(logg.WithField(ctx, "email", input.Email), "seed.store_created")
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		logg.Info(logg.WithField(ctx, "email", input.Email), "seed.store_exists")
	default:
		return fmt.Errorf("seed store %s: %w", input.Email, err)
	}
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

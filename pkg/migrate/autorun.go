package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/db"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
)

// MaybeRunDev migrates on boot when running outside production with the
// auto-migrate flag on. SQLite databases are always migrated since they are
// local by nature.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqlite := client.Driver() == config.DriverSQLite
	if !sqlite && (cfg.App.IsProd() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running migrations (auto-run)")

	if err := Up(ctx, client); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logg.Info(ctx, "migrations completed")
	return nil
}

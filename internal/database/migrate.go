package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/giannis84/recipe-favourites/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// UniqueUserRecipeIndex is the index backing the optional (user_id, recipe_id) uniqueness constraint.
const UniqueUserRecipeIndex = "idx_favourites_user_recipe"

// MigrateOptions controls schema migration.
type MigrateOptions struct {
	// UniqueUserRecipe creates the unique index when true and drops it when false.
	UniqueUserRecipe bool
}

// Migrate brings the favourites relation up to date on the given PostgreSQL pool.
// The pool stays owned by the caller.
func Migrate(ctx context.Context, db *sql.DB, opts MigrateOptions, logger *slog.Logger) error {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("opening gorm session: %w", err)
	}
	return AutoMigrate(gdb.WithContext(ctx), opts)
}

// AutoMigrate runs the dialect-independent part of the migration.
func AutoMigrate(gdb *gorm.DB, opts MigrateOptions) error {
	if err := gdb.AutoMigrate(&models.Favourite{}); err != nil {
		return fmt.Errorf("migrating favourites table: %w", err)
	}

	migrator := gdb.Migrator()
	hasIndex := migrator.HasIndex(&models.Favourite{}, UniqueUserRecipeIndex)

	switch {
	case opts.UniqueUserRecipe && !hasIndex:
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON favourites (user_id, recipe_id)", UniqueUserRecipeIndex)
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating %s (existing duplicates must be removed first): %w", UniqueUserRecipeIndex, err)
		}
	case !opts.UniqueUserRecipe && hasIndex:
		if err := migrator.DropIndex(&models.Favourite{}, UniqueUserRecipeIndex); err != nil {
			return fmt.Errorf("dropping %s: %w", UniqueUserRecipeIndex, err)
		}
	}
	return nil
}

// newGormLogger routes gorm's warnings and slow queries through slog.
func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/giannis84/recipe-favourites/internal/models"
	"github.com/lib/pq"
)

const favouriteColumns = `id, user_id, recipe_id, title, image, cook_time, servings, created_at`

// PostgresRepository implements FavouritesRepository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository backed by the given *sql.DB.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddFavouriteInDB inserts the favourite and fills in the id and created_at assigned by the store.
func (r *PostgresRepository) AddFavouriteInDB(ctx context.Context, favourite *models.Favourite) error {
	const query = `
		INSERT INTO favourites (user_id, recipe_id, title, image, cook_time, servings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		favourite.UserID, favourite.RecipeID,
		favourite.Title, favourite.Image, favourite.CookTime, favourite.Servings,
	).Scan(&favourite.ID, &favourite.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return persistenceErr("inserting favourite", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserFavouritesFromDB(ctx context.Context, userID string) ([]*models.Favourite, error) {
	const query = `
		SELECT ` + favouriteColumns + `
		FROM favourites
		WHERE user_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, persistenceErr("querying user favourites", err)
	}
	defer rows.Close()

	favourites := []*models.Favourite{}
	for rows.Next() {
		fav, err := scanFavourite(rows)
		if err != nil {
			return nil, err
		}
		favourites = append(favourites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("iterating user favourites", err)
	}
	return favourites, nil
}

// DeleteFavouriteFromDB removes every favourite matching the pair and reports how many rows went.
// Zero rows is not an error.
func (r *PostgresRepository) DeleteFavouriteFromDB(ctx context.Context, userID string, recipeID int) (int64, error) {
	const query = `DELETE FROM favourites WHERE user_id = $1 AND recipe_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, recipeID)
	if err != nil {
		return 0, persistenceErr("deleting favourite", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, persistenceErr("checking rows affected", err)
	}
	return rowsAffected, nil
}

// scanFavourite scans a single row from the favourites table.
func scanFavourite(rows *sql.Rows) (*models.Favourite, error) {
	var fav models.Favourite
	err := rows.Scan(
		&fav.ID, &fav.UserID, &fav.RecipeID,
		&fav.Title, &fav.Image, &fav.CookTime, &fav.Servings,
		&fav.CreatedAt,
	)
	if err != nil {
		return nil, persistenceErr("scanning favourite row", err)
	}
	return &fav, nil
}

// isUniqueViolation checks if a PostgreSQL error is a unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pge *pq.Error
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

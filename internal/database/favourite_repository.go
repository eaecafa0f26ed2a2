package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/giannis84/recipe-favourites/internal/models"
)

// ErrAlreadyExists is only returned when the (user_id, recipe_id) uniqueness constraint is enabled.
var ErrAlreadyExists = errors.New("favourite already exists")

// PersistenceError wraps any failure reported by the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// FavouritesRepository defines the interface for managing user favourites storage.
type FavouritesRepository interface {
	AddFavouriteInDB(ctx context.Context, favourite *models.Favourite) error
	GetUserFavouritesFromDB(ctx context.Context, userID string) ([]*models.Favourite, error)
	DeleteFavouriteFromDB(ctx context.Context, userID string, recipeID int) (int64, error)
}

// Pinger is satisfied by *sql.DB. Used by the readiness check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

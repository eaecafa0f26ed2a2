package database

import (
	"context"
	"sync"
	"time"

	"github.com/giannis84/recipe-favourites/internal/models"
)

// MockRepository is a simple in-memory FavouritesRepository intended for unit tests only.
// Rows are kept in insertion order, mirroring ORDER BY id in PostgresRepository.
type MockRepository struct {
	mu         sync.RWMutex
	nextID     int64
	unique     bool
	favourites []*models.Favourite
	err        error
}

// NewMockRepository returns a MockRepository for testing. When unique is true it rejects a
// second favourite for the same (user, recipe) pair like the database index does.
func NewMockRepository(unique bool) *MockRepository {
	return &MockRepository{unique: unique}
}

// FailWith makes every subsequent call return err wrapped in a PersistenceError. Pass nil to reset.
func (r *MockRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *MockRepository) AddFavouriteInDB(_ context.Context, favourite *models.Favourite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return persistenceErr("inserting favourite", r.err)
	}

	if r.unique {
		for _, fav := range r.favourites {
			if fav.UserID == favourite.UserID && fav.RecipeID == favourite.RecipeID {
				return ErrAlreadyExists
			}
		}
	}

	r.nextID++
	favourite.ID = r.nextID
	favourite.CreatedAt = time.Now().UTC()

	stored := *favourite
	r.favourites = append(r.favourites, &stored)
	return nil
}

func (r *MockRepository) GetUserFavouritesFromDB(_ context.Context, userID string) ([]*models.Favourite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, persistenceErr("querying user favourites", r.err)
	}

	result := []*models.Favourite{}
	for _, fav := range r.favourites {
		if fav.UserID == userID {
			copied := *fav
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MockRepository) DeleteFavouriteFromDB(_ context.Context, userID string, recipeID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return 0, persistenceErr("deleting favourite", r.err)
	}

	kept := r.favourites[:0]
	var deleted int64
	for _, fav := range r.favourites {
		if fav.UserID == userID && fav.RecipeID == recipeID {
			deleted++
			continue
		}
		kept = append(kept, fav)
	}
	r.favourites = kept
	return deleted, nil
}

package handlers

import (
	"context"
	"strconv"

	"github.com/giannis84/recipe-favourites/internal/database"
	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/giannis84/recipe-favourites/internal/models"
)

// AddFavouriteRequest is the body of POST /api/favourites.
type AddFavouriteRequest struct {
	UserID   FlexibleString `json:"userId"`
	RecipeID RequiredInt    `json:"recipeId"`
	Title    *string        `json:"title"`
	Image    *string        `json:"image"`
	CookTime *string        `json:"cookTime"`
	Servings *FlexibleInt   `json:"servings"`
}

// ParseAddFavouriteRequest checks the required fields and builds the favourite to insert.
func ParseAddFavouriteRequest(req *AddFavouriteRequest) (*models.Favourite, error) {
	err := validate(
		func() string { return requirePresent("userId", string(req.UserID)) },
		func() string { return requireSet("recipeId", req.RecipeID) },
	)
	if err != nil {
		return nil, err
	}

	favourite := &models.Favourite{
		UserID:   string(req.UserID),
		RecipeID: req.RecipeID.Value,
		Title:    req.Title,
		Image:    req.Image,
		CookTime: req.CookTime,
	}
	if req.Servings != nil {
		servings := int(*req.Servings)
		favourite.Servings = &servings
	}
	return favourite, nil
}

// ParseRecipeID parses a recipe id path parameter as a base-10 integer.
// ok is false when raw cannot match any stored recipe id.
func ParseRecipeID(raw string) (recipeID int, ok bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func AddFavourite(ctx context.Context, repo database.FavouritesRepository, req *AddFavouriteRequest) (*models.Favourite, error) {
	favourite, err := ParseAddFavouriteRequest(req)
	if err != nil {
		return nil, err
	}

	if err := repo.AddFavouriteInDB(ctx, favourite); err != nil {
		return nil, err
	}
	return favourite, nil
}

func GetUserFavourites(ctx context.Context, repo database.FavouritesRepository, userID string) ([]*models.Favourite, error) {
	return repo.GetUserFavouritesFromDB(ctx, userID)
}

// RemoveFavourite deletes every favourite of userID for the recipe in rawRecipeID and returns
// the number of rows removed. A recipe id that is not an integer removes nothing and never
// reaches the store.
func RemoveFavourite(ctx context.Context, repo database.FavouritesRepository, userID, rawRecipeID string) (int64, error) {
	recipeID, ok := ParseRecipeID(rawRecipeID)
	if !ok {
		logging.Log(ctx).Layer("handler").Op("RemoveFavourite").User(userID).Str("recipe_id", rawRecipeID).
			Debug("recipe id is not an integer, nothing to delete")
		return 0, nil
	}
	return repo.DeleteFavouriteFromDB(ctx, userID, recipeID)
}

package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/giannis84/recipe-favourites/internal/database"
	"github.com/giannis84/recipe-favourites/internal/handlers"
	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
)

const (
	msgInvalidBody       = "Invalid request body"
	msgMissingFields     = "Missing required fields"
	msgAlreadyExists     = "Favourite already exists"
	msgSomethingWrong    = "Something went wrong"
	msgFavouriteRemoved  = "Favorite removed successfully"
	jsonContentType      = "application/json"
	maxRequestBodyLength = 1 << 20
)

// RegisterFavouritesRoutes sets up the favourites API routes.
// HTTP concerns are handled here, while business logic is delegated to the handlers package.
func RegisterFavouritesRoutes(repo database.FavouritesRepository) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Get("/health", healthRoute())

			r.Route("/favourites", func(r chi.Router) {
				r.With(jsonBodyOnly).Post("/", addFavouriteRoute(repo))
				r.Get("/{userID}", getUserFavouritesRoute(repo))
				r.Delete("/{userID}/{recipeID}", removeFavouriteRoute(repo))
			})

			// US spelling used by existing clients.
			r.Get("/favorites/{userID}", getUserFavouritesRoute(repo))
		})
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Success bool `json:"success"`
}

func healthRoute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, HealthResponse{Success: true})
	}
}

func addFavouriteRoute(repo database.FavouritesRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req handlers.AddFavouriteRequest
		// An empty body decodes as an empty object.
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLength)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			logging.Log(ctx).Layer("routes").Op("addFavourite").Err(err).
				Warn("failed to decode request body")
			respondWithError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		logging.Log(ctx).Layer("routes").Op("addFavourite").User(string(req.UserID)).Recipe(req.RecipeID.Value).
			Info("received add favourite request")

		favourite, err := handlers.AddFavourite(ctx, repo, &req)
		if err != nil {
			var validationErr *handlers.ValidationError
			switch {
			case errors.As(err, &validationErr):
				logging.Log(ctx).Layer("routes").Op("addFavourite").User(string(req.UserID)).Err(err).
					Warn("invalid add favourite request")
				respondWithError(w, http.StatusBadRequest, msgMissingFields)
			case errors.Is(err, database.ErrAlreadyExists):
				logging.Log(ctx).Layer("routes").Op("addFavourite").User(string(req.UserID)).Recipe(req.RecipeID.Value).
					Warn("favourite already exists")
				respondWithError(w, http.StatusConflict, msgAlreadyExists)
			default:
				logging.Log(ctx).Layer("routes").Op("addFavourite").User(string(req.UserID)).Err(err).
					Error("failed to add favourite")
				respondWithError(w, http.StatusInternalServerError, msgSomethingWrong)
			}
			return
		}

		logging.Log(ctx).Layer("routes").Op("addFavourite").User(favourite.UserID).Recipe(favourite.RecipeID).
			Favourite(favourite.ID).Int("status_code", http.StatusCreated).
			Info("favourite added successfully")
		respondWithJSON(w, http.StatusCreated, favourite)
	}
}

func getUserFavouritesRoute(repo database.FavouritesRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "userID")

		logging.Log(ctx).Layer("routes").Op("getUserFavourites").User(userID).
			Info("received get favourites request")

		favourites, err := handlers.GetUserFavourites(ctx, repo, userID)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("getUserFavourites").User(userID).Err(err).
				Error("failed to get user favourites")
			respondWithError(w, http.StatusInternalServerError, msgSomethingWrong)
			return
		}

		logging.Log(ctx).Layer("routes").Op("getUserFavourites").User(userID).
			Int("count", len(favourites)).Int("status_code", http.StatusOK).
			Info("favourites retrieved successfully")
		respondWithJSON(w, http.StatusOK, favourites)
	}
}

func removeFavouriteRoute(repo database.FavouritesRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "userID")
		recipeID := chi.URLParam(r, "recipeID")

		logging.Log(ctx).Layer("routes").Op("removeFavourite").User(userID).Str("recipe_id", recipeID).
			Info("received remove favourite request")

		removed, err := handlers.RemoveFavourite(ctx, repo, userID, recipeID)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("removeFavourite").User(userID).Str("recipe_id", recipeID).Err(err).
				Error("failed to remove favourite")
			respondWithError(w, http.StatusInternalServerError, msgSomethingWrong)
			return
		}

		logging.Log(ctx).Layer("routes").Op("removeFavourite").User(userID).Str("recipe_id", recipeID).
			Int64("removed", removed).Int("status_code", http.StatusOK).
			Info("favourite removed successfully")
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: msgFavouriteRemoved})
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

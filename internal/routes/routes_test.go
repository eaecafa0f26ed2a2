package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/giannis84/recipe-favourites/internal/database"
	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/giannis84/recipe-favourites/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
)

var testCols = []string{"id", "user_id", "recipe_id", "title", "image", "cook_time", "servings", "created_at"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(repo database.FavouritesRepository) *chi.Mux {
	router := chi.NewRouter()
	router.Use(logging.RequestLogger(testLogger()))
	router.Group(RegisterFavouritesRoutes(repo))
	return router
}

// setupTestHandler wires the routes to a PostgresRepository backed by sqlmock.
func setupTestHandler(t *testing.T) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return newRouter(database.NewPostgresRepository(db)), mock
}

func setupMockHandler(t *testing.T, unique bool) (*chi.Mux, *database.MockRepository) {
	t.Helper()
	repo := database.NewMockRepository(unique)
	return newRouter(repo), repo
}

func postFavourite(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/favourites", bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeFavourites(t *testing.T, rr *httptest.ResponseRecorder) []models.Favourite {
	t.Helper()
	var favourites []models.Favourite
	if err := json.Unmarshal(rr.Body.Bytes(), &favourites); err != nil {
		t.Fatalf("failed to decode favourites %q: %v", rr.Body.String(), err)
	}
	return favourites
}

func errorMessage(rr *httptest.ResponseRecorder) string {
	var resp ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	return resp.Error
}

func recipeBody(userID string, recipeID int) map[string]any {
	return map[string]any{
		"userId":   userID,
		"recipeId": recipeID,
		"title":    "Spaghetti Carbonara",
		"image":    "https://img.example.com/carbonara.jpg",
		"cookTime": "25 minutes",
		"servings": 4,
	}
}

func TestHealthRoute(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	rr := doRequest(router, "GET", "/api/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"success":true}` {
		t.Errorf("unexpected body %s", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
}

func TestFavouritesRoutes_AddFavourite(t *testing.T) {
	router, mock := setupTestHandler(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO favourites").
		WithArgs("user1", 42, "Spaghetti Carbonara", "https://img.example.com/carbonara.jpg", "25 minutes", 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	rr := postFavourite(t, router, recipeBody("user1", 42))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d. Body: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var fav models.Favourite
	if err := json.Unmarshal(rr.Body.Bytes(), &fav); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fav.ID != 7 || fav.UserID != "user1" || fav.RecipeID != 42 {
		t.Errorf("unexpected favourite %+v", fav)
	}
	if fav.Servings == nil || *fav.Servings != 4 {
		t.Errorf("expected servings 4, got %v", fav.Servings)
	}
	if !fav.CreatedAt.Equal(now) {
		t.Errorf("expected createdAt %v, got %v", now, fav.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFavouritesRoutes_AddFavouriteAssignsDistinctIDs(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	seen := map[int64]bool{}
	for i := 1; i <= 5; i++ {
		rr := postFavourite(t, router, map[string]any{"userId": fmt.Sprintf("user%d", i%2), "recipeId": 100 + i})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d. Body: %s", http.StatusCreated, rr.Code, rr.Body.String())
		}

		var fav models.Favourite
		json.Unmarshal(rr.Body.Bytes(), &fav)
		if fav.UserID != fmt.Sprintf("user%d", i%2) || fav.RecipeID != 100+i {
			t.Errorf("response does not echo input: %+v", fav)
		}
		if seen[fav.ID] {
			t.Errorf("id %d issued twice", fav.ID)
		}
		seen[fav.ID] = true
	}
}

func TestFavouritesRoutes_AddFavouriteValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{name: "empty object", body: `{}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "missing recipeId", body: `{"userId":"u1"}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "missing userId", body: `{"recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "empty userId", body: `{"userId":"","recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "zero recipeId", body: `{"userId":"u1","recipeId":0}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "malformed JSON", body: `{"userId":`, wantCode: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "recipeId not a number", body: `{"userId":"u1","recipeId":"abc"}`, wantCode: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "empty body", body: ``, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "false recipeId", body: `{"userId":"u1","recipeId":false}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "null recipeId", body: `{"userId":"u1","recipeId":null}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "false userId", body: `{"userId":false,"recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "zero userId", body: `{"userId":0,"recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "null userId", body: `{"userId":null,"recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "object userId", body: `{"userId":{"id":1},"recipeId":42}`, wantCode: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "numeric string recipeId", body: `{"userId":"u1","recipeId":"42"}`, wantCode: http.StatusCreated},
		{name: "string zero recipeId is present", body: `{"userId":"u1","recipeId":"0"}`, wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupMockHandler(t, false)

			req := httptest.NewRequest("POST", "/api/favourites", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d. Body: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantError != "" {
				if got := errorMessage(rr); got != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, got)
				}
				stored := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1"))
				if len(stored) != 0 {
					t.Errorf("expected no insert, found %d favourites", len(stored))
				}
			}
		})
	}
}

func TestFavouritesRoutes_AddFavouriteNumericUserID(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	rr := postFavourite(t, router, map[string]any{"userId": 42, "recipeId": "0"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d. Body: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	stored := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/42"))
	if len(stored) != 1 || stored[0].UserID != "42" || stored[0].RecipeID != 0 {
		t.Errorf("expected one favourite for user 42 and recipe 0, got %+v", stored)
	}
}

func TestFavouritesRoutes_AddDuplicateFavourite(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		router, _ := setupMockHandler(t, false)

		for i := 0; i < 2; i++ {
			if rr := postFavourite(t, router, recipeBody("u1", 42)); rr.Code != http.StatusCreated {
				t.Fatalf("add %d: expected status %d, got %d", i, http.StatusCreated, rr.Code)
			}
		}

		if got := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1")); len(got) != 2 {
			t.Errorf("expected 2 favourites, got %d", len(got))
		}
	})

	t.Run("rejected by unique index", func(t *testing.T) {
		router, mock := setupTestHandler(t)

		mock.ExpectQuery("INSERT INTO favourites").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
		if rr := postFavourite(t, router, recipeBody("u1", 42)); rr.Code != http.StatusCreated {
			t.Fatalf("first add failed: status %d, body: %s", rr.Code, rr.Body.String())
		}

		mock.ExpectQuery("INSERT INTO favourites").
			WillReturnError(&pq.Error{Code: "23505"})
		rr := postFavourite(t, router, recipeBody("u1", 42))

		if rr.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d. Body: %s", http.StatusConflict, rr.Code, rr.Body.String())
		}
		if got := errorMessage(rr); got != "Favourite already exists" {
			t.Errorf("unexpected error message: %q", got)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestFavouritesRoutes_GetUserFavourites(t *testing.T) {
	router, mock := setupTestHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM favourites WHERE user_id").
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows(testCols).
			AddRow(1, "user1", 42, "Carbonara", nil, "25 minutes", 4, now).
			AddRow(2, "user1", 7, nil, nil, nil, nil, now))

	rr := doRequest(router, "GET", "/api/favourites/user1")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d. Body: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	favourites := decodeFavourites(t, rr)
	if len(favourites) != 2 {
		t.Fatalf("expected 2 favourites, got %d", len(favourites))
	}
	if favourites[0].RecipeID != 42 || favourites[1].RecipeID != 7 {
		t.Errorf("unexpected order: %+v", favourites)
	}
	if favourites[1].Title != nil {
		t.Errorf("expected null title, got %q", *favourites[1].Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFavouritesRoutes_GetUserFavouritesEmpty(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	for _, path := range []string{"/api/favourites/nobody", "/api/favorites/nobody"} {
		rr := doRequest(router, "GET", path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
		if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
			t.Errorf("%s: expected empty JSON array, got %s", path, got)
		}
	}
}

func TestFavouritesRoutes_UserIsolation(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	postFavourite(t, router, recipeBody("u1", 1))
	postFavourite(t, router, recipeBody("u2", 2))
	postFavourite(t, router, recipeBody("u1", 3))

	tests := []struct {
		path        string
		wantRecipes []int
	}{
		{path: "/api/favourites/u1", wantRecipes: []int{1, 3}},
		{path: "/api/favorites/u1", wantRecipes: []int{1, 3}},
		{path: "/api/favourites/u2", wantRecipes: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			favourites := decodeFavourites(t, doRequest(router, "GET", tt.path))
			if len(favourites) != len(tt.wantRecipes) {
				t.Fatalf("expected %d favourites, got %d", len(tt.wantRecipes), len(favourites))
			}
			for i, fav := range favourites {
				if fav.RecipeID != tt.wantRecipes[i] {
					t.Errorf("favourite %d: expected recipe %d, got %d", i, tt.wantRecipes[i], fav.RecipeID)
				}
			}
		})
	}
}

func TestFavouritesRoutes_RemoveFavourite(t *testing.T) {
	router, mock := setupTestHandler(t)

	mock.ExpectExec("DELETE FROM favourites").
		WithArgs("user1", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := doRequest(router, "DELETE", "/api/favourites/user1/42")

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d. Body: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var resp MessageResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Message != "Favorite removed successfully" {
		t.Errorf("unexpected response: %v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFavouritesRoutes_RemoveReportsSuccessWithoutMatch(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "no such favourite", path: "/api/favourites/u1/42"},
		{name: "recipe id is not an integer", path: "/api/favourites/u1/abc"},
		{name: "recipe id is a decimal", path: "/api/favourites/u1/4.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupMockHandler(t, false)

			rr := doRequest(router, "DELETE", tt.path)

			if rr.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d. Body: %s", http.StatusOK, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestFavouritesRoutes_RoundTrip(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	if rr := postFavourite(t, router, recipeBody("u1", 42)); rr.Code != http.StatusCreated {
		t.Fatalf("add failed: status %d", rr.Code)
	}
	if got := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1")); len(got) != 1 || got[0].RecipeID != 42 {
		t.Fatalf("expected the added favourite, got %+v", got)
	}

	if rr := doRequest(router, "DELETE", "/api/favourites/u1/42"); rr.Code != http.StatusOK {
		t.Fatalf("delete failed: status %d", rr.Code)
	}
	if got := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1")); len(got) != 0 {
		t.Errorf("expected 0 favourites after removal, got %d", len(got))
	}
}

func TestFavouritesRoutes_ConcurrentDuplicateAdds(t *testing.T) {
	tests := []struct {
		name        string
		unique      bool
		wantCreated int
	}{
		{name: "duplicates allowed", unique: false, wantCreated: 10},
		{name: "unique pairs", unique: true, wantCreated: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupMockHandler(t, tt.unique)

			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				statuses = map[int]int{}
			)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					rr := postFavourite(t, router, recipeBody("u1", 42))
					mu.Lock()
					statuses[rr.Code]++
					mu.Unlock()
				}()
			}
			wg.Wait()

			if statuses[http.StatusCreated] != tt.wantCreated {
				t.Errorf("expected %d created, got %v", tt.wantCreated, statuses)
			}
			if statuses[http.StatusCreated]+statuses[http.StatusConflict] != 10 {
				t.Errorf("unexpected statuses %v", statuses)
			}
			if got := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1")); len(got) != tt.wantCreated {
				t.Errorf("expected %d stored favourites, got %d", tt.wantCreated, len(got))
			}
		})
	}
}

func TestFavouritesRoutes_StoreFailureIsHidden(t *testing.T) {
	storeErr := errors.New("pq: password authentication failed for user \"app\"")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "add", method: "POST", path: "/api/favourites", body: recipeBody("u1", 42)},
		{name: "list", method: "GET", path: "/api/favourites/u1"},
		{name: "list alias", method: "GET", path: "/api/favorites/u1"},
		{name: "remove", method: "DELETE", path: "/api/favourites/u1/42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := setupMockHandler(t, false)
			repo.FailWith(storeErr)

			var rr *httptest.ResponseRecorder
			if tt.body != nil {
				rr = postFavourite(t, router, tt.body)
			} else {
				rr = doRequest(router, tt.method, tt.path)
			}

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
			}
			if got := errorMessage(rr); got != "Something went wrong" {
				t.Errorf("expected generic error, got %q", got)
			}
			if strings.Contains(rr.Body.String(), "password") {
				t.Errorf("response leaks the store error: %s", rr.Body.String())
			}
		})
	}
}

func TestFavouritesRoutes_SQLFailures(t *testing.T) {
	router, mock := setupTestHandler(t)

	mock.ExpectQuery("INSERT INTO favourites").WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery("SELECT .+ FROM favourites WHERE user_id").WillReturnError(errors.New("connection refused"))
	mock.ExpectExec("DELETE FROM favourites").WillReturnError(errors.New("connection refused"))

	if rr := postFavourite(t, router, recipeBody("u1", 42)); rr.Code != http.StatusInternalServerError {
		t.Errorf("add: expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if rr := doRequest(router, "GET", "/api/favourites/u1"); rr.Code != http.StatusInternalServerError {
		t.Errorf("list: expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if rr := doRequest(router, "DELETE", "/api/favourites/u1/42"); rr.Code != http.StatusInternalServerError {
		t.Errorf("remove: expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFavouritesRoutes_ContentTypeMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantCode    int
		wantError   string
	}{
		{name: "missing Content-Type ignores body", contentType: "", wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "wrong Content-Type ignores body", contentType: "text/plain", wantCode: http.StatusBadRequest, wantError: "Missing required fields"},
		{name: "JSON with charset is allowed", contentType: "application/json; charset=utf-8", wantCode: http.StatusCreated},
		{name: "JSON is allowed", contentType: "application/json", wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupMockHandler(t, false)

			body, _ := json.Marshal(recipeBody("u1", 42))
			req := httptest.NewRequest("POST", "/api/favourites", bytes.NewBuffer(body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d. Body: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantError != "" {
				if got := errorMessage(rr); got != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, got)
				}
				if stored := decodeFavourites(t, doRequest(router, "GET", "/api/favourites/u1")); len(stored) != 0 {
					t.Errorf("expected no insert, found %d favourites", len(stored))
				}
			}
		})
	}
}

func TestFavouritesRoutes_UnknownRoutes(t *testing.T) {
	router, _ := setupMockHandler(t, false)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{name: "delete without recipe", method: "DELETE", path: "/api/favourites/u1", wantCode: http.StatusMethodNotAllowed},
		{name: "delete on US spelling", method: "DELETE", path: "/api/favorites/u1/42", wantCode: http.StatusNotFound},
		{name: "unknown path", method: "GET", path: "/api/recipes", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doRequest(router, tt.method, tt.path); rr.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/api"
	"github.com/pageza/forkfeed/backend/internal/models"
	"github.com/pageza/forkfeed/backend/internal/router"
	"github.com/pageza/forkfeed/backend/internal/service"
	"github.com/pageza/forkfeed/backend/internal/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testBaseURL = "http://localhost:8080"

type fakeStorage struct {
	stored int
}

func (f *fakeStorage) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	f.stored++
	return fmt.Sprintf("https://blobs.example/%d", f.stored), nil
}

func (f *fakeStorage) Delete(ctx context.Context, publicURL string) error {
	return nil
}

// testServer wires the full route table over an in-memory database.
type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Setup(t)
	storage := &fakeStorage{}

	authService := service.NewAuthService(db, "test-secret")
	userService := service.NewUserService(db, storage)
	recipeService := service.NewRecipeService(db)
	relationService := service.NewRelationService(db)
	ingredientService := service.NewIngredientService(db)
	shoppingListService := service.NewShoppingListService(db)
	shortLinkService := service.NewShortLinkService(db, nil, testBaseURL)

	engine := router.SetupRouter(router.Deps{
		AuthHandler: api.NewAuthHandler(authService, userService),
		RecipeHandler: api.NewRecipeHandler(
			recipeService,
			relationService,
			shoppingListService,
			shortLinkService,
			storage,
			testBaseURL,
		),
		UserHandler:       api.NewUserHandler(userService, relationService),
		IngredientHandler: api.NewIngredientHandler(ingredientService),
		ShortLinkHandler:  api.NewShortLinkHandler(shortLinkService),
		TokenValidator:    authService,
	})
	return &testServer{engine: engine, db: db}
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// register creates a user over HTTP and returns its id and token.
func (s *testServer) register(t *testing.T, username string) (string, string) {
	t.Helper()
	w := s.request(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	body := decodeJSON(t, w)
	user := body["user"].(map[string]interface{})
	return user["id"].(string), body["token"].(string)
}

// seedIngredient inserts reference data directly.
func (s *testServer) seedIngredient(t *testing.T, name, unit string) string {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, s.db.Create(&ing).Error)
	return ing.ID.String()
}

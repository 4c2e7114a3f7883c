package api_test

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) createRecipe(t *testing.T, token, name string, ingredients ...map[string]interface{}) string {
	t.Helper()
	w := s.request(t, http.MethodPost, "/api/recipes", token, map[string]interface{}{
		"name":         name,
		"text":         "Instructions",
		"cooking_time": 15,
		"ingredients":  ingredients,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decodeJSON(t, w)["id"].(string)
}

func TestRecipeCRUD(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "bob")
	flour := srv.seedIngredient(t, "flour", "g")

	id := srv.createRecipe(t, token, "Bread", map[string]interface{}{"id": flour, "amount": 100})

	w := srv.request(t, http.MethodGet, "/api/recipes/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "Bread", body["name"])
	ingredients := body["ingredients"].([]interface{})
	require.Len(t, ingredients, 1)
	line := ingredients[0].(map[string]interface{})
	assert.Equal(t, "flour", line["name"])
	assert.Equal(t, float64(100), line["amount"])

	w = srv.request(t, http.MethodPut, "/api/recipes/"+id, token, map[string]interface{}{
		"name":         "Sourdough",
		"cooking_time": 60,
		"ingredients":  []map[string]interface{}{{"id": flour, "amount": 500}},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Sourdough", decodeJSON(t, w)["name"])

	w = srv.request(t, http.MethodDelete, "/api/recipes/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.request(t, http.MethodGet, "/api/recipes/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeCreateWithDataURIImage(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "bob")
	flour := srv.seedIngredient(t, "flour", "g")

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))
	w := srv.request(t, http.MethodPost, "/api/recipes", token, map[string]interface{}{
		"name":         "Bread",
		"cooking_time": 15,
		"image":        image,
		"ingredients":  []map[string]interface{}{{"id": flour, "amount": 100}},
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.True(t, strings.HasPrefix(decodeJSON(t, w)["image"].(string), "https://blobs.example/"))
}

func TestRecipeCreateRejectsInvalidSubmission(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "bob")

	w := srv.request(t, http.MethodPost, "/api/recipes", token, map[string]interface{}{
		"name":         "Bread",
		"cooking_time": 15,
		"ingredients":  []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeUpdateForbiddenForNonAuthor(t *testing.T) {
	srv := newTestServer(t)
	_, bobToken := srv.register(t, "bob")
	_, malloryToken := srv.register(t, "mallory")
	flour := srv.seedIngredient(t, "flour", "g")

	id := srv.createRecipe(t, bobToken, "Bread", map[string]interface{}{"id": flour, "amount": 100})

	w := srv.request(t, http.MethodPut, "/api/recipes/"+id, malloryToken, map[string]interface{}{
		"name":         "Stolen",
		"cooking_time": 5,
		"ingredients":  []map[string]interface{}{{"id": flour, "amount": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(t, http.MethodDelete, "/api/recipes/"+id, malloryToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFavoriteToggleEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, bobToken := srv.register(t, "bob")
	_, aliceToken := srv.register(t, "alice")
	flour := srv.seedIngredient(t, "flour", "g")
	id := srv.createRecipe(t, bobToken, "Bread", map[string]interface{}{"id": flour, "amount": 100})

	w := srv.request(t, http.MethodPost, "/api/recipes/"+id+"/favorite", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Bread", decodeJSON(t, w)["name"])

	// Duplicate add is a conflict-style 400, removal twice a 404.
	w = srv.request(t, http.MethodPost, "/api/recipes/"+id+"/favorite", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(t, http.MethodDelete, "/api/recipes/"+id+"/favorite", aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.request(t, http.MethodDelete, "/api/recipes/"+id+"/favorite", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeListFilters(t *testing.T) {
	srv := newTestServer(t)
	bobID, bobToken := srv.register(t, "bob")
	_, aliceToken := srv.register(t, "alice")
	flour := srv.seedIngredient(t, "flour", "g")

	bread := srv.createRecipe(t, bobToken, "Bread", map[string]interface{}{"id": flour, "amount": 100})
	srv.createRecipe(t, aliceToken, "Soup", map[string]interface{}{"id": flour, "amount": 10})

	w := srv.request(t, http.MethodPost, "/api/recipes/"+bread+"/favorite", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.request(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON(t, w)["recipes"], 2)

	w = srv.request(t, http.MethodGet, "/api/recipes?author="+bobID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON(t, w)["recipes"], 1)

	w = srv.request(t, http.MethodGet, "/api/recipes?is_favorited=1", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	recipes := decodeJSON(t, w)["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "Bread", recipes[0].(map[string]interface{})["name"])

	// Anonymous viewer-dependent filter returns an empty list.
	w = srv.request(t, http.MethodGet, "/api/recipes?is_favorited=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeJSON(t, w)["recipes"])
}

func TestDownloadShoppingCart(t *testing.T) {
	srv := newTestServer(t)
	_, bobToken := srv.register(t, "bob")
	_, aliceToken := srv.register(t, "alice")
	flour := srv.seedIngredient(t, "flour", "g")
	id := srv.createRecipe(t, bobToken, "Bread", map[string]interface{}{"id": flour, "amount": 100})

	w := srv.request(t, http.MethodPost, "/api/recipes/"+id+"/shopping_cart", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.request(t, http.MethodGet, "/api/recipes/download_shopping_cart", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_cart.txt")
	assert.Contains(t, w.Body.String(), "Flour — 100 g")
	assert.Contains(t, w.Body.String(), "- Bread (author: bob)")
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "alice")

	w := srv.request(t, http.MethodGet, "/api/recipes/download_shopping_cart", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetShortLinkAndRedirect(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "bob")
	flour := srv.seedIngredient(t, "flour", "g")
	id := srv.createRecipe(t, token, "Bread", map[string]interface{}{"id": flour, "amount": 100})

	w := srv.request(t, http.MethodGet, "/api/recipes/"+id+"/get-link", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	shortLink := decodeJSON(t, w)["short-link"].(string)
	require.True(t, strings.HasPrefix(shortLink, testBaseURL+"/s/"))

	// Asking again returns the same link.
	w = srv.request(t, http.MethodGet, "/api/recipes/"+id+"/get-link", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shortLink, decodeJSON(t, w)["short-link"])

	slugPath := strings.TrimPrefix(shortLink, testBaseURL)
	w = srv.request(t, http.MethodGet, slugPath, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testBaseURL+"/api/recipes/"+id, w.Header().Get("Location"))
}

func TestShortLinkUnknownSlug(t *testing.T) {
	srv := newTestServer(t)

	w := srv.request(t, http.MethodGet, "/s/missing1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetShortLinkMissingRecipe(t *testing.T) {
	srv := newTestServer(t)

	w := srv.request(t, http.MethodGet, "/api/recipes/00000000-0000-0000-0000-000000000000/get-link", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

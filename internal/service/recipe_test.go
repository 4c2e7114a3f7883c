package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/forkfeed/backend/internal/models"
	"github.com/pageza/forkfeed/backend/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	flour := createIngredient(t, db, "flour", "g")
	milk := createIngredient(t, db, "milk", "ml")

	recipe, err := svc.Create(context.Background(), author.ID, &types.RecipeWrite{
		Name:        "Pancakes",
		Text:        "Mix and fry",
		CookingTime: 20,
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 200},
			{ID: milk.ID, Amount: 300},
		},
	}, "https://example.com/pancakes.png")
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Equal(t, "bob", recipe.Author.Username)
	assert.Len(t, recipe.Ingredients, 2)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	flour := createIngredient(t, db, "flour", "g")

	tests := []struct {
		name string
		req  types.RecipeWrite
	}{
		{
			name: "zero cooking time",
			req: types.RecipeWrite{
				Name: "Bread", CookingTime: 0,
				Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 100}},
			},
		},
		{
			name: "no ingredients",
			req:  types.RecipeWrite{Name: "Bread", CookingTime: 10},
		},
		{
			name: "duplicate ingredient",
			req: types.RecipeWrite{
				Name: "Bread", CookingTime: 10,
				Ingredients: []types.IngredientAmount{
					{ID: flour.ID, Amount: 100},
					{ID: flour.ID, Amount: 50},
				},
			},
		},
		{
			name: "zero amount",
			req: types.RecipeWrite{
				Name: "Bread", CookingTime: 10,
				Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 0}},
			},
		},
		{
			name: "unknown ingredient",
			req: types.RecipeWrite{
				Name: "Bread", CookingTime: 10,
				Ingredients: []types.IngredientAmount{{ID: uuid.New(), Amount: 100}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), author.ID, &tt.req, "")
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected a validation error, got %v", err)
		})
	}

	// No partial writes from rejected submissions.
	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	flour := createIngredient(t, db, "flour", "g")
	milk := createIngredient(t, db, "milk", "ml")
	egg := createIngredient(t, db, "egg", "pcs")

	recipe, err := svc.Create(context.Background(), author.ID, &types.RecipeWrite{
		Name: "Pancakes", CookingTime: 20,
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 200},
			{ID: milk.ID, Amount: 300},
		},
	}, "")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), recipe.ID, author.ID, &types.RecipeWrite{
		Name: "Better pancakes", Text: "Now with eggs", CookingTime: 25,
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 150},
			{ID: egg.ID, Amount: 2},
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Better pancakes", updated.Name)
	assert.Equal(t, 25, updated.CookingTime)
	require.Len(t, updated.Ingredients, 2)

	// The old milk line is gone and the flour amount reflects the
	// submitted set, not the previous one.
	fetched, err := svc.Get(context.Background(), recipe.ID)
	require.NoError(t, err)
	byID := map[uuid.UUID]int{}
	for _, line := range fetched.Ingredients {
		byID[line.IngredientID] = line.Amount
	}
	assert.Equal(t, map[uuid.UUID]int{flour.ID: 150, egg.ID: 2}, byID)
}

func TestUpdateRecipeOnlyAuthor(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	other := createUser(t, db, "mallory")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Bread", ingredientLine{flour, 100})

	_, err := svc.Update(context.Background(), recipe.ID, other.ID, &types.RecipeWrite{
		Name: "Stolen bread", CookingTime: 10,
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 100}},
	}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRecipeKeepsImageWhenOmitted(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	flour := createIngredient(t, db, "flour", "g")

	recipe, err := svc.Create(context.Background(), author.ID, &types.RecipeWrite{
		Name: "Bread", CookingTime: 10,
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 100}},
	}, "https://example.com/bread.png")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), recipe.ID, author.ID, &types.RecipeWrite{
		Name: "Bread", CookingTime: 15,
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 100}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/bread.png", updated.ImageURL)
}

func TestDeleteRecipe(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	relations := NewRelationService(db)
	author := createUser(t, db, "bob")
	fan := createUser(t, db, "alice")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Bread", ingredientLine{flour, 100})

	_, err := relations.AddFavorite(context.Background(), fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = relations.AddCartEntry(context.Background(), fan.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), recipe.ID, author.ID))

	_, err = svc.Get(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Ingredient lines and relations went with the recipe.
	var count int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.Favorite{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.CartEntry{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteRecipeOnlyAuthor(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db, "bob")
	other := createUser(t, db, "mallory")
	recipe := createRecipe(t, db, author, "Bread")

	err := svc.Delete(context.Background(), recipe.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListRecipesFilters(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	relations := NewRelationService(db)
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	viewer := createUser(t, db, "alice")

	bread := createRecipe(t, db, bob, "Bread")
	soup := createRecipe(t, db, carol, "Soup")
	createRecipe(t, db, carol, "Cake")

	_, err := relations.AddFavorite(context.Background(), viewer.ID, bread.ID)
	require.NoError(t, err)
	_, err = relations.AddCartEntry(context.Background(), viewer.ID, soup.ID)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), ListRecipesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAuthor, err := svc.List(context.Background(), ListRecipesQuery{AuthorID: &carol.ID})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	favorited, err := svc.List(context.Background(), ListRecipesQuery{FavoritedBy: &viewer.ID})
	require.NoError(t, err)
	require.Len(t, favorited, 1)
	assert.Equal(t, bread.ID, favorited[0].ID)

	inCart, err := svc.List(context.Background(), ListRecipesQuery{InCartOf: &viewer.ID})
	require.NoError(t, err)
	require.Len(t, inCart, 1)
	assert.Equal(t, soup.ID, inCart[0].ID)

	paged, err := svc.List(context.Background(), ListRecipesQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestToResponseViewerFlags(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	relations := NewRelationService(db)
	author := createUser(t, db, "bob")
	viewer := createUser(t, db, "alice")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Bread", ingredientLine{flour, 100})

	_, err := relations.AddFavorite(context.Background(), viewer.ID, recipe.ID)
	require.NoError(t, err)
	_, err = relations.Subscribe(context.Background(), viewer.ID, author.ID)
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), recipe.ID)
	require.NoError(t, err)

	resp, err := svc.ToResponse(context.Background(), fetched, &viewer.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsFavorited)
	assert.False(t, resp.IsInShoppingCart)
	assert.True(t, resp.Author.IsSubscribed)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "flour", resp.Ingredients[0].Name)
	assert.Equal(t, 100, resp.Ingredients[0].Amount)

	// Anonymous viewers never see per-viewer flags set.
	anon, err := svc.ToResponse(context.Background(), fetched, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.Author.IsSubscribed)
}

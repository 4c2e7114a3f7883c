package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
	"github.com/pageza/forkfeed/backend/internal/testdb"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.Setup(t)
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ing).Error)
	return &ing
}

type ingredientLine struct {
	ingredient *models.Ingredient
	amount     int
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines ...ingredientLine) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 10,
	}
	require.NoError(t, db.Create(&recipe).Error)
	for _, line := range lines {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: line.ingredient.ID,
			Amount:       line.amount,
		}).Error)
	}
	return &recipe
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
)

// ShoppingListService builds the consolidated shopping list for a
// user's cart.
type ShoppingListService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db, now: time.Now}
}

// shoppingListItem is one aggregated line. Grouping is by the
// (name, measurement unit) display pair, not ingredient id: two
// ingredient rows sharing a name and unit merge into one line.
type shoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// BuildShoppingList renders the text report for the user's cart. The
// output is deterministic for a fixed database state: lines are summed
// per (name, unit) and ordered by case-normalized name. An empty cart
// is a validation error rather than an empty report.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return "", err
	}

	// Cart entries are unique per (user, recipe), so the join cannot
	// duplicate a recipe's ingredient lines.
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Joins("JOIN cart_entries ON cart_entries.recipe_id = recipes.id").
		Where("cart_entries.user_id = ?", userID).
		Preload("Author").
		Order("recipes.name").
		Find(&recipes).Error; err != nil {
		return "", err
	}
	if len(recipes) == 0 {
		return "", Validationf("shopping cart is empty")
	}

	var items []shoppingListItem
	if err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_entries ON cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("LOWER(ingredients.name)").
		Scan(&items).Error; err != nil {
		return "", err
	}

	return renderShoppingList(&user, recipes, items, s.now()), nil
}

func renderShoppingList(user *models.User, recipes []models.Recipe, items []shoppingListItem, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("02.01.2006"))
	b.WriteString("Ingredients:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s — %d %s\n", i+1, capitalize(item.Name), item.Total, item.MeasurementUnit)
	}
	b.WriteString("\nRecipes in cart:\n")
	for _, r := range recipes {
		fmt.Fprintf(&b, "- %s (author: %s)\n", r.Name, r.Author.Username)
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

package types

import "github.com/google/uuid"

// UserResponse is the public user representation. IsSubscribed is
// computed relative to the requesting user.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       string    `json:"avatar"`
}

// ShortRecipe is the compact recipe representation used in toggle
// payloads and embedded subscription previews.
type ShortRecipe struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// UserWithRecipes embeds recipe previews into a followed author,
// capped by the recipes_limit query parameter.
type UserWithRecipes struct {
	UserResponse
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// IngredientLine is one ingredient of a recipe read payload.
type IngredientLine struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID                uuid.UUID        `json:"id"`
	Author            UserResponse     `json:"author"`
	Ingredients       []IngredientLine `json:"ingredients"`
	IsFavorited       bool             `json:"is_favorited"`
	IsInShoppingCart  bool             `json:"is_in_shopping_cart"`
	Name              string           `json:"name"`
	Image             string           `json:"image"`
	Text              string           `json:"text"`
	CookingTime       int              `json:"cooking_time"`
}

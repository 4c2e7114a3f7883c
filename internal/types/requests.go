package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmount is one ingredient line of a recipe submission.
// Amount bounds are checked in the service layer so the error can name
// the offending ingredient.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeWrite is the create/update payload. Image is either a data URI
// (decoded and pushed to blob storage by the handler) or an already
// stored URL.
type RecipeWrite struct {
	Name        string             `json:"name" binding:"required"`
	Text        string             `json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

type AvatarUpdateRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

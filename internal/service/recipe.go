package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
	"github.com/pageza/forkfeed/backend/internal/types"
)

// RecipeService handles recipe persistence and write validation.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// ListRecipesQuery collects the supported list filters. Pointer fields
// are inactive when nil.
type ListRecipesQuery struct {
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Limit       int
	Offset      int
}

// List returns recipes matching the query ordered by name, with
// ingredient lines and authors preloaded.
func (s *RecipeService) List(ctx context.Context, q ListRecipesQuery) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx).Model(&models.Recipe{})
	if q.AuthorID != nil {
		db = db.Where("recipes.author_id = ?", *q.AuthorID)
	}
	if q.FavoritedBy != nil {
		db = db.Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *q.FavoritedBy)
	}
	if q.InCartOf != nil {
		db = db.Joins("JOIN cart_entries ON cart_entries.recipe_id = recipes.id").
			Where("cart_entries.user_id = ?", *q.InCartOf)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var recipes []models.Recipe
	err := db.Preload("Author").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Order("recipes.name").
		Find(&recipes).Error
	return recipes, err
}

// Get returns one recipe with author and ingredient lines preloaded.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// Create validates the submission and stores the recipe with its
// ingredient lines in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeWrite, imageURL string) (*models.Recipe, error) {
	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return createIngredientLines(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields and its full ingredient list.
// Partial ingredient patches are not supported: the old lines are
// dropped and the submitted set recreated.
func (s *RecipeService) Update(ctx context.Context, id, userID uuid.UUID, req *types.RecipeWrite, imageURL string) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, fmt.Errorf("%w: only the author can update a recipe", ErrForbidden)
	}
	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if imageURL != "" {
			updates["image_url"] = imageURL
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createIngredientLines(tx, id, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the recipe together with its ingredient lines and any
// favorite/cart references. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return fmt.Errorf("%w: only the author can delete a recipe", ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.CartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// validateWrite enforces the write invariants: cooking time and every
// amount at least 1, at least one ingredient line, no duplicate
// ingredient ids, and every referenced ingredient present.
func (s *RecipeService) validateWrite(ctx context.Context, req *types.RecipeWrite) error {
	if req.CookingTime < 1 {
		return Validationf("cooking_time must be at least 1")
	}
	if len(req.Ingredients) == 0 {
		return Validationf("at least one ingredient is required")
	}

	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	ids := make([]uuid.UUID, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		if seen[line.ID] {
			return Validationf("duplicate ingredient %s", line.ID)
		}
		seen[line.ID] = true
		if line.Amount < 1 {
			return Validationf("amount for ingredient %s must be at least 1", line.ID)
		}
		ids = append(ids, line.ID)
	}

	var existing []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, ing := range existing {
		known[ing.ID] = true
	}
	for _, line := range req.Ingredients {
		if !known[line.ID] {
			return Validationf("ingredient %s not found", line.ID)
		}
	}
	return nil
}

func createIngredientLines(tx *gorm.DB, recipeID uuid.UUID, lines []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}

// ToResponse assembles the read payload for one recipe. viewerID is
// nil for anonymous requests, which leaves the per-viewer flags false.
func (s *RecipeService) ToResponse(ctx context.Context, recipe *models.Recipe, viewerID *uuid.UUID) (*types.RecipeResponse, error) {
	resp := &types.RecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Author: types.UserResponse{
			ID:        recipe.Author.ID,
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			Avatar:    recipe.Author.AvatarURL,
		},
		Ingredients: make([]types.IngredientLine, 0, len(recipe.Ingredients)),
	}
	for _, line := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, types.IngredientLine{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	if viewerID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", *viewerID, recipe.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		resp.IsFavorited = count > 0

		if err := s.db.WithContext(ctx).Model(&models.CartEntry{}).
			Where("user_id = ? AND recipe_id = ?", *viewerID, recipe.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		resp.IsInShoppingCart = count > 0

		if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("follower_id = ? AND author_id = ?", *viewerID, recipe.AuthorID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		resp.Author.IsSubscribed = count > 0
	}
	return resp, nil
}

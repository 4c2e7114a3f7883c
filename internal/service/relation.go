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

// RelationService implements the add-or-remove primitive shared by
// favorites, cart entries and subscriptions. ADD relies on the
// composite unique index of the join table: two concurrent duplicate
// ADDs both hit Create, the storage layer rejects the second one and
// it is reported as a conflict. REMOVE maps zero affected rows to
// ErrNotFound.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// add inserts the join row, translating a unique violation into
// ErrAlreadyExists with the relation-specific message.
func add[R any](db *gorm.DB, row *R, existsMsg string) error {
	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, existsMsg)
		}
		return err
	}
	return nil
}

// remove deletes the join row matching cond, mapping a miss to
// ErrNotFound with the relation-specific message.
func remove[R any](db *gorm.DB, cond map[string]interface{}, missingMsg string) error {
	res := db.Where(cond).Delete(new(R))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, missingMsg)
	}
	return nil
}

func (s *RelationService) getRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return nil, err
	}
	return &recipe, nil
}

// AddFavorite favorites a recipe for a user and returns the compact
// recipe payload.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipe, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := add(s.db.WithContext(ctx), &fav, fmt.Sprintf("recipe %q is already in favorites", recipe.Name)); err != nil {
		return nil, err
	}
	return shortRecipe(recipe), nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	cond := map[string]interface{}{"user_id": userID, "recipe_id": recipeID}
	return remove[models.Favorite](s.db.WithContext(ctx), cond,
		fmt.Sprintf("recipe %q is not in favorites", recipe.Name))
}

// AddCartEntry puts a recipe into the user's shopping cart.
func (s *RelationService) AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipe, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	entry := models.CartEntry{UserID: userID, RecipeID: recipeID}
	if err := add(s.db.WithContext(ctx), &entry, fmt.Sprintf("recipe %q is already in the shopping cart", recipe.Name)); err != nil {
		return nil, err
	}
	return shortRecipe(recipe), nil
}

func (s *RelationService) RemoveCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	cond := map[string]interface{}{"user_id": userID, "recipe_id": recipeID}
	return remove[models.CartEntry](s.db.WithContext(ctx), cond,
		fmt.Sprintf("recipe %q is not in the shopping cart", recipe.Name))
}

// Subscribe follows an author. Self-subscription is rejected before the
// toggle runs.
func (s *RelationService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) (*models.User, error) {
	if followerID == authorID {
		return nil, Validationf("cannot subscribe to yourself")
	}
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, authorID)
		}
		return nil, err
	}
	sub := models.Subscription{FollowerID: followerID, AuthorID: authorID}
	if err := add(s.db.WithContext(ctx), &sub, fmt.Sprintf("already subscribed to %s", author.FullName())); err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *RelationService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, authorID)
		}
		return err
	}
	cond := map[string]interface{}{"follower_id": followerID, "author_id": authorID}
	return remove[models.Subscription](s.db.WithContext(ctx), cond,
		fmt.Sprintf("not subscribed to %s", author.FullName()))
}

// IsSubscribed reports whether follower follows author.
func (s *RelationService) IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

func shortRecipe(r *models.Recipe) *types.ShortRecipe {
	return &types.ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

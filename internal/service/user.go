package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
	"github.com/pageza/forkfeed/backend/internal/types"
)

// UserService serves user profiles, avatars and subscription listings.
type UserService struct {
	db      *gorm.DB
	storage BlobStorage
}

func NewUserService(db *gorm.DB, storage BlobStorage) *UserService {
	return &UserService{db: db, storage: storage}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// ToResponse renders a user relative to the viewer. viewerID nil
// leaves is_subscribed false.
func (s *UserService) ToResponse(ctx context.Context, user *models.User, viewerID *uuid.UUID) (*types.UserResponse, error) {
	resp := &types.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Avatar:    user.AvatarURL,
	}
	if viewerID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("follower_id = ? AND author_id = ?", *viewerID, user.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		resp.IsSubscribed = count > 0
	}
	return resp, nil
}

// UpdateAvatar decodes the data-URI payload, stores the image and
// saves its public URL on the user. A previous avatar is deleted from
// storage best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	data, contentType, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	avatarURL, err := s.storage.Store(ctx, data, contentType)
	if err != nil {
		return "", err
	}

	old := user.AvatarURL
	user.AvatarURL = avatarURL
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error; err != nil {
		return "", err
	}

	if old != "" {
		if err := s.storage.Delete(ctx, old); err != nil {
			log.Warn().Err(err).Str("url", old).Msg("failed to delete previous avatar")
		}
	}
	return avatarURL, nil
}

// DeleteAvatar clears the avatar and removes the stored blob.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", "").Error; err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, user.AvatarURL); err != nil {
		log.Warn().Err(err).Str("url", user.AvatarURL).Msg("failed to delete avatar blob")
	}
	return nil
}

// WithRecipes renders an author with up to recipesLimit embedded recipe
// previews (0 means no cap) and the full recipe count. IsSubscribed is
// set unconditionally: callers use this for authors the viewer follows.
func (s *UserService) WithRecipes(ctx context.Context, author *models.User, recipesLimit int) (*types.UserWithRecipes, error) {
	entry := types.UserWithRecipes{
		UserResponse: types.UserResponse{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
			Avatar:       author.AvatarURL,
		},
		Recipes: []types.ShortRecipe{},
	}

	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&entry.RecipesCount).Error; err != nil {
		return nil, err
	}

	recipesQuery := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("name")
	if recipesLimit > 0 {
		recipesQuery = recipesQuery.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := recipesQuery.Find(&recipes).Error; err != nil {
		return nil, err
	}
	for i := range recipes {
		entry.Recipes = append(entry.Recipes, *shortRecipe(&recipes[i]))
	}
	return &entry, nil
}

// Subscriptions lists the authors the user follows, each rendered with
// embedded recipe previews.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, recipesLimit, limit, offset int) ([]types.UserWithRecipes, error) {
	db := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.follower_id = ?", userID).
		Order("users.username")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var authors []models.User
	if err := db.Find(&authors).Error; err != nil {
		return nil, err
	}

	result := make([]types.UserWithRecipes, 0, len(authors))
	for i := range authors {
		entry, err := s.WithRecipes(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, nil
}

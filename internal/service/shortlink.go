package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
)

const (
	slugLength      = 8
	slugLetters     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	slugMaxAttempts = 3

	shortLinkCachePrefix = "shortlink:"
	shortLinkCacheTTL    = 24 * time.Hour
)

// ShortLinkService maps slugs to full URLs with get-or-create
// semantics keyed on the URL. Resolution results are cached in Redis
// when a client is configured; the cache is best-effort and a nil
// client disables it.
type ShortLinkService struct {
	db      *gorm.DB
	cache   *redis.Client
	baseURL string
}

func NewShortLinkService(db *gorm.DB, cache *redis.Client, baseURL string) *ShortLinkService {
	return &ShortLinkService{db: db, cache: cache, baseURL: baseURL}
}

// GetOrCreate returns the short link for originalURL, creating one
// with a fresh random slug only when none exists. Repeated calls with
// the same URL return the same slug.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, originalURL string) (*models.ShortLink, error) {
	if originalURL == "" {
		return nil, Validationf("original URL is required")
	}

	var link models.ShortLink
	err := s.db.WithContext(ctx).First(&link, "original_url = ?", originalURL).Error
	if err == nil {
		return &link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		link = models.ShortLink{Slug: randomSlug(), OriginalURL: originalURL}
		err := s.db.WithContext(ctx).Create(&link).Error
		if err == nil {
			return &link, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Either the slug collided or a concurrent request created the
		// same URL first. The latter wins the idempotency contract.
		var existing models.ShortLink
		if ferr := s.db.WithContext(ctx).First(&existing, "original_url = ?", originalURL).Error; ferr == nil {
			return &existing, nil
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique slug after %d attempts", slugMaxAttempts)
}

// Resolve returns the original URL for slug, or ErrNotFound.
func (s *ShortLinkService) Resolve(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("%w: empty slug", ErrNotFound)
	}

	if s.cache != nil {
		if url, err := s.cache.Get(ctx, shortLinkCachePrefix+slug).Result(); err == nil {
			return url, nil
		}
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).First(&link, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: short link %q", ErrNotFound, slug)
		}
		return "", err
	}

	if s.cache != nil {
		s.cache.Set(ctx, shortLinkCachePrefix+link.Slug, link.OriginalURL, shortLinkCacheTTL)
	}
	return link.OriginalURL, nil
}

// ShortURL renders the absolute short URL for a slug.
func (s *ShortLinkService) ShortURL(slug string) string {
	return fmt.Sprintf("%s/s/%s", s.baseURL, slug)
}

func randomSlug() string {
	b := make([]byte, slugLength)
	letterCount := big.NewInt(int64(len(slugLetters)))
	for i := range b {
		n, _ := rand.Int(rand.Reader, letterCount)
		b[i] = slugLetters[n.Int64()]
	}
	return string(b)
}

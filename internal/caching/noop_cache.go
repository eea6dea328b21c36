package caching

import (
	"context"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
)

// noopCacheService satisfies CacheService without caching anything. Used when
// the server runs on the local file store, where Redis is usually absent.
type noopCacheService struct{}

// NewNoopCacheService returns a cache that stores nothing and never limits.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetItem(context.Context, uuid.UUID, uuid.UUID) (*models.Item, error) {
	return nil, nil
}

func (noopCacheService) SetItem(context.Context, uuid.UUID, *models.Item, time.Duration) error {
	return nil
}

func (noopCacheService) DeleteItem(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (noopCacheService) InvalidateUserCache(context.Context, uuid.UUID) error {
	return nil
}

func (noopCacheService) IsRateLimited(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

func (noopCacheService) SetString(context.Context, string, string, time.Duration) error {
	return nil
}

func (noopCacheService) GetString(context.Context, string) (string, error) {
	return "", nil
}

func (noopCacheService) Delete(context.Context, string) error {
	return nil
}

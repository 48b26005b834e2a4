package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/carnet/carnet/internal/model"
)

const (
	// userCachePrefix is the Redis key prefix for resolved-user cache entries.
	userCachePrefix = "auth:user:"
	// userCacheTTL keeps entries short-lived so a deleted user stops
	// resolving quickly even though tokens cannot be revoked.
	userCacheTTL = 60 * time.Second
)

// cachedUser is the Redis representation of a resolved user.
// The password hash is deliberately not cached.
type cachedUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUser retrieves a cached user by ID.
// Returns nil on a miss or a corrupted entry; the caller falls back to the store.
func (c *Cache) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	key := userCachePrefix + strconv.FormatInt(userID, 10)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.User{
		ID:        cached.ID,
		Username:  cached.Username,
		Email:     cached.Email,
		CreatedAt: cached.CreatedAt,
	}, nil
}

// SetUser caches a resolved user.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	key := userCachePrefix + strconv.FormatInt(user.ID, 10)

	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return c.client.Set(ctx, key, data, userCacheTTL).Err()
}

// DeleteUser removes a cached user entry.
func (c *Cache) DeleteUser(ctx context.Context, userID int64) error {
	key := userCachePrefix + strconv.FormatInt(userID, 10)
	return c.client.Del(ctx, key).Err()
}

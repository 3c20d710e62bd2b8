package user

import (
	"context"
	"encoding/json"
	"time"

	"creator-chat-backend/internal/env"
	"creator-chat-backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// Every websocket join and sync_username re-resolves the sender's profile, so
// reads by user id are cached in Redis with a short TTL. Writes invalidate.
const cacheTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
}

// NewCache returns a pass-through cache when no Redis address is configured;
// every method then reports a miss and lookups fall through to the store.
func NewCache() *Cache {
	addr := env.Get(env.UserRedisURL)
	if addr == "" {
		return &Cache{}
	}

	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: env.Get(env.UserRedisPass),
			DB:       0,
		}),
	}
}

func cacheKey(userID string) string {
	return "user:" + userID
}

func (c *Cache) Get(ctx context.Context, userID string) (model.UserItem, bool) {
	if c == nil || c.client == nil {
		return model.UserItem{}, false
	}

	val, err := c.client.Get(ctx, cacheKey(userID)).Result()
	if err != nil {
		return model.UserItem{}, false
	}

	var user model.UserItem
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return model.UserItem{}, false
	}
	return user, true
}

func (c *Cache) Set(ctx context.Context, user model.UserItem) {
	if c == nil || c.client == nil || user.UserID == "" {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(user.UserID), data, cacheTTL)
}

func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, cacheKey(userID))
}

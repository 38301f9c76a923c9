package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// SetSessionFields writes fields into the session hash and refreshes its TTL.
func (c *Cache) SetSessionFields(ctx context.Context, sessionID string, fields map[string]string, ttl time.Duration) error {
	key := sessionKey(sessionID)
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetSessionField returns "" for a missing session or field.
func (c *Cache) GetSessionField(ctx context.Context, sessionID, field string) (string, error) {
	val, err := c.client.HGet(ctx, sessionKey(sessionID), field).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

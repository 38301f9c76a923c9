package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReceiptSnapshots keeps the last receipt body loaded by each session.
type ReceiptSnapshots struct {
	client *redis.Client
}

func NewReceiptSnapshots(client *redis.Client) *ReceiptSnapshots {
	return &ReceiptSnapshots{client: client}
}

// Get returns nil, nil when the session has no snapshot.
func (r *ReceiptSnapshots) Get(ctx context.Context, sessionID string) ([]byte, error) {
	val, err := r.client.Get(ctx, "receipt:"+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *ReceiptSnapshots) Set(ctx context.Context, sessionID string, raw []byte, ttl time.Duration) error {
	return r.client.Set(ctx, "receipt:"+sessionID, raw, ttl).Err()
}

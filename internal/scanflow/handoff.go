package scanflow

import (
	"context"
	"encoding/json"
	"time"

	"vms-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The check-out summary screen receives the full visitor payload through
// short-lived storage instead of the URL: the record with assets, guests
// and host snapshot is too large for a query string. Keys are single-use.

const handoffPrefix = "checkout:handoff:"
const defaultHandoffTTL = 5 * time.Minute

// HandoffStore holds check-out hand-off payloads in Redis.
type HandoffStore struct {
	Rdb *redis.Client
	TTL time.Duration
}

func (h *HandoffStore) ttl() time.Duration {
	if h.TTL > 0 {
		return h.TTL
	}
	return defaultHandoffTTL
}

// Put stores the visitor payload under a fresh key and returns the key.
func (h *HandoffStore) Put(ctx context.Context, v *models.Visitor) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	if err := h.Rdb.Set(ctx, handoffPrefix+key, b, h.ttl()).Err(); err != nil {
		return "", err
	}
	return key, nil
}

// Pop retrieves and deletes the payload. Returns nil when the key is
// unknown or already consumed.
func (h *HandoffStore) Pop(ctx context.Context, key string) (*models.Visitor, error) {
	b, err := h.Rdb.GetDel(ctx, handoffPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v models.Visitor
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

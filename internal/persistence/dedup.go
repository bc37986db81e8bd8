package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const dedupKeyPrefix = "analytics:event:"

// DedupStore remembers processed event ids so redelivered messages are
// recorded once. Backed by redis SETNX with a TTL.
type DedupStore struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewDedupStore builds the store. A nil or unreachable redis degrades
// to processing every delivery.
func NewDedupStore(r *Redis, ttl time.Duration, logger *zap.Logger) *DedupStore {
	return &DedupStore{redis: r, ttl: ttl, logger: logger}
}

// FirstDelivery reports whether eventID has not been seen before and
// marks it seen. Store failures count as first deliveries; duplicate
// rows are preferred over dropped ones.
func (s *DedupStore) FirstDelivery(ctx context.Context, eventID string) bool {
	if s == nil || s.redis == nil || s.redis.Client == nil || eventID == "" {
		return true
	}
	ok, err := s.redis.Client.SetNX(ctx, dedupKeyPrefix+eventID, 1, s.ttl).Result()
	if err != nil {
		s.logger.Warn("dedup store unavailable; processing anyway", zap.Error(err))
		return true
	}
	return ok
}

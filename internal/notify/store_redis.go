package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore queues notices in a per-session list with a TTL so abandoned
// sessions do not accumulate messages.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return "notices:" + sessionID
}

func (s *RedisStore) Push(ctx context.Context, sessionID string, notice Notice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key(sessionID), data)
	pipe.Expire(ctx, key(sessionID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue notice: %w", err)
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, sessionID string) ([]Notice, error) {
	pipe := s.rdb.TxPipeline()
	items := pipe.LRange(ctx, key(sessionID), 0, -1)
	pipe.Del(ctx, key(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain notices: %w", err)
	}

	raw, err := items.Result()
	if err != nil {
		return nil, fmt.Errorf("read notices: %w", err)
	}
	notices := make([]Notice, 0, len(raw))
	for _, item := range raw {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}

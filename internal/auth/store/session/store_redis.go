package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roost/internal/auth"
	"roost/pkg/platform/sentinel"
)

// returnToTTL bounds how long an intended destination survives an abandoned
// login.
const returnToTTL = 15 * time.Minute

// RedisSessionStore persists sessions with expiry enforced by Redis TTLs, so
// expired sessions vanish without a reaper.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

func returnToKey(deviceID string) string {
	return "returnto:" + deviceID
}

func (s *RedisSessionStore) Create(ctx context.Context, session auth.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	if err := s.rdb.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) FindByID(ctx context.Context, id string) (auth.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Session{}, sentinel.ErrNotFound
		}
		return auth.Session{}, fmt.Errorf("load session: %w", err)
	}
	var session auth.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return auth.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) SaveReturnTo(ctx context.Context, deviceID, path string) error {
	if err := s.rdb.Set(ctx, returnToKey(deviceID), path, returnToTTL).Err(); err != nil {
		return fmt.Errorf("save return-to: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) ConsumeReturnTo(ctx context.Context, deviceID string) (string, error) {
	path, err := s.rdb.GetDel(ctx, returnToKey(deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("consume return-to: %w", err)
	}
	return path, nil
}

package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/retail-receipt-ingest/internal/domain/session"
)

// RedisStore persists sessions in Redis so in-flight conversations survive a
// process restart. Each session is stored as JSON under a per-chat key with
// a TTL slightly past the idle timeout; the flow still checks LastActive
// itself, the TTL is just garbage collection.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. The TTL should be the
// session idle timeout; a grace period is added so the flow can deliver the
// "session expired" message instead of silently forgetting the chat.
func NewRedisStore(client *redis.Client, idleTimeout time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    idleTimeout + time.Minute,
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("receipt:session:%d", chatID)
}

// Get implements session.Store.
func (r *RedisStore) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Put implements session.Store.
func (r *RedisStore) Put(ctx context.Context, s *session.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(s.ChatID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete implements session.Store.
func (r *RedisStore) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

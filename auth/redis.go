package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefixSession is the prefix for session keys.
	keyPrefixSession = "linkpg:session:"
	// keyPrefixState is the prefix for OAuth state nonce keys.
	keyPrefixState = "linkpg:state:"
)

// sessionKey returns the Redis key for a session by ID.
func sessionKey(id string) string {
	return keyPrefixSession + id
}

// stateKey returns the Redis key for a state nonce.
func stateKey(state string) string {
	return keyPrefixState + state
}

// RedisStore is a SessionStore backed by Redis. Expiry is handled by
// Redis key TTLs, so no cleanup job is needed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a SessionStore over the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveSession stores a session with the given time-to-live.
func (s *RedisStore) SaveSession(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *RedisStore) GetSession(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session.
func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SaveState stores a one-shot CSRF state nonce.
func (s *RedisStore) SaveState(ctx context.Context, state, provider string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKey(state), provider, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// TakeState consumes a state nonce and returns its provider name.
func (s *RedisStore) TakeState(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateMismatch
		}
		return "", fmt.Errorf("failed to take state: %w", err)
	}
	return provider, nil
}

// Compile-time check
var _ SessionStore = (*RedisStore)(nil)

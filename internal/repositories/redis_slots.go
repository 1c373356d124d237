package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/go-redis/redis/v8"
)

// RedisSlotStore implements [SlotStore] with one redis key per slot.
//
// Keys are laid out as prefix:scope:owner:key. Session keys carry the session idle timeout,
// which is refreshed on every write together with the session pointer, so a session's slots
// disappear together once it goes idle.
type RedisSlotStore struct {
	client    *redis.Client
	prefix    string
	sessionID string
	ttl       time.Duration
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, c shared.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// OpenRedisSession returns the current redis session id, starting a new session when the previous one expired.
//
// The pointer key is refreshed with ttl so it expires together with the session slots.
func OpenRedisSession(ctx context.Context, client *redis.Client, prefix string, ttl time.Duration) (string, error) {
	pointer := sessionPointer(prefix)

	id, err := client.Get(ctx, pointer).Result()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		id = shared.GenerateID()
		ok, err := client.SetNX(ctx, pointer, id, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to start session: %w", err)
		}
		if !ok {
			if id, err = client.Get(ctx, pointer).Result(); err != nil {
				return "", fmt.Errorf("failed to read session: %w", err)
			}
		}
	default:
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	if err := client.Expire(ctx, pointer, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	return id, nil
}

// NewRedisSlotStore creates a store whose session slots belong to sessionID and expire after ttl.
func NewRedisSlotStore(client *redis.Client, prefix, sessionID string, ttl time.Duration) *RedisSlotStore {
	return &RedisSlotStore{client: client, prefix: prefix, sessionID: sessionID, ttl: ttl}
}

// Key returns the redis key for a slot.
func (s *RedisSlotStore) Key(scope Scope, key string) (string, error) {
	switch scope {
	case ScopeDurable:
		return joinKey(s.prefix, string(scope), key), nil
	case ScopeSession:
		if s.sessionID == "" {
			return "", fmt.Errorf("%w: no session", shared.ErrInvalidArgument)
		}
		return joinKey(s.prefix, string(scope), s.sessionID, key), nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", shared.ErrInvalidArgument, scope)
	}
}

// Get returns the payload stored under key, or [shared.ErrSlotNotFound].
func (s *RedisSlotStore) Get(ctx context.Context, scope Scope, key string) ([]byte, error) {
	k, err := s.Key(scope, key)
	if err != nil {
		return nil, err
	}

	payload, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrSlotNotFound, scope, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return payload, nil
}

// Put replaces the payload stored under key.
func (s *RedisSlotStore) Put(ctx context.Context, scope Scope, key string, payload []byte) error {
	k, err := s.Key(scope, key)
	if err != nil {
		return err
	}

	if scope != ScopeSession {
		if err := s.client.Set(ctx, k, payload, 0).Err(); err != nil {
			return fmt.Errorf("failed to write slot: %w", err)
		}
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, k, payload, s.ttl)
		pipe.Expire(ctx, sessionPointer(s.prefix), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// Delete clears the slot. Deleting an empty slot is not an error.
func (s *RedisSlotStore) Delete(ctx context.Context, scope Scope, key string) error {
	k, err := s.Key(scope, key)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if scope == ScopeSession {
			pipe.Expire(ctx, sessionPointer(s.prefix), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// SessionPointer returns the key holding the current session id.
func (s *RedisSlotStore) SessionPointer() string { return sessionPointer(s.prefix) }

func sessionPointer(prefix string) string {
	return joinKey(prefix, "session", "current")
}

func joinKey(parts ...string) string {
	return strings.Join(parts, ":")
}

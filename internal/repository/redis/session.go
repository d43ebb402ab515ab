package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

const sessionKeyPrefix = "chatbot:session:"

// SessionStore implements repository.SessionStore using Redis. Entries
// expire after the configured TTL; an evicted session simply restarts the
// conversation at the greeting.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new Redis-backed chatbot session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the user's session from Redis.
func (s *SessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	key := sessionKeyPrefix + userID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("session", userID)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := session.Validate(); err != nil {
		// A corrupted entry is as good as no entry.
		return nil, apperrors.NotFound("session", userID)
	}

	return &session, nil
}

// Put stores the session with the configured TTL, refreshing the deadline.
func (s *SessionStore) Put(ctx context.Context, session *domain.Session) error {
	key := sessionKeyPrefix + session.UserID

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Delete removes the session from Redis.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	key := sessionKeyPrefix + userID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}

	return nil
}

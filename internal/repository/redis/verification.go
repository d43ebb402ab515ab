package redis

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const verificationKeyPrefix = "verify:email:"

// VerificationStore implements repository.VerificationStore using Redis.
// Codes expire after the configured TTL; issuing a new code replaces the
// previous one.
type VerificationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerificationStore creates a new Redis-backed verification code store.
func NewVerificationStore(client *redis.Client, ttl time.Duration) *VerificationStore {
	return &VerificationStore{
		client: client,
		ttl:    ttl,
	}
}

// Put stores the code for the email, replacing any previous one.
func (s *VerificationStore) Put(ctx context.Context, email, code string) error {
	key := verificationKeyPrefix + email

	if err := s.client.Set(ctx, key, code, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set verification code: %w", err)
	}

	return nil
}

// Consume checks the code and deletes it on match, so a code verifies at
// most once. A wrong, expired, or absent code returns false without error.
func (s *VerificationStore) Consume(ctx context.Context, email, code string) (bool, error) {
	key := verificationKeyPrefix + email

	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get verification code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("redis del verification code: %w", err)
	}

	return true, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers completed registrations so that a retried
// request carrying the same Idempotency-Key replays the first result.
// Key format: idempotency:register:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. Entries expire after ttl, or
// defaultIdempotencyTTL when ttl <= 0.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// storedUser is the projection kept in Redis; it never carries the hash.
type storedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Lookup returns the user registered under key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*domain.User, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	var su storedUser
	if err := json.Unmarshal(raw, &su); err != nil {
		return nil, false, fmt.Errorf("idempotency decode: %w", err)
	}
	return &domain.User{ID: su.ID, Username: su.Username, Email: su.Email, Role: su.Role}, true, nil
}

// Save records user under key. An existing entry is left untouched.
func (s *IdempotencyStore) Save(ctx context.Context, key string, user *domain.User) error {
	raw, err := json.Marshal(storedUser{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role})
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.client.SetNX(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency save: %w", err)
	}
	return nil
}

// Forget drops the entry stored under key.
func (s *IdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency forget: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idempotency:register:" + k
}

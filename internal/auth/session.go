package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix = "token:"
	defaultTTL     = 24 * time.Hour
)

// Store manages bearer tokens in Redis. A token is valid exactly as long as
// its key exists; expiration is the only revocation mechanism besides
// explicit logout.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new token store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Create mints a new random token and stores it with the configured TTL.
func (s *Store) Create(ctx context.Context) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, tokenKeyPrefix+token, "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Delete removes a token.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, tokenKeyPrefix+token).Err()
}

// Exists returns true if the token is still live.
func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

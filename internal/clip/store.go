package clip

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
)

const (
	slotKey    = "clip:current"
	defaultTTL = 24 * time.Hour
)

// Store holds the single cloud-clipboard slot in Redis. Every save
// overwrites the previous value and restarts the TTL; once the key
// expires the slot is simply empty again.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new clip store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Get returns the current clip, or nil if the slot is empty or expired.
func (s *Store) Get(ctx context.Context) (*dom.Clip, error) {
	b, err := s.rdb.Get(ctx, slotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c dom.Clip
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set overwrites the slot with text (empty string included) and a fresh
// timestamp, returning the stored clip.
func (s *Store) Set(ctx context.Context, text string) (dom.Clip, error) {
	c := dom.Clip{Text: text, CreatedAt: time.Now().UTC()}
	b, err := json.Marshal(c)
	if err != nil {
		return dom.Clip{}, err
	}
	if err := s.rdb.Set(ctx, slotKey, b, s.ttl).Err(); err != nil {
		return dom.Clip{}, err
	}
	return c, nil
}

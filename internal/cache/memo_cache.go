package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
)

const (
	keyList       = "memo:list"
	keyItemPrefix = "memo:item:"
)

// MemoCache caches the memo list and individual memos in Redis. Entries
// carry a short TTL; writes must still invalidate explicitly so a read
// right after a write never sees the pre-write value.
type MemoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMemoCache returns a new MemoCache.
func NewMemoCache(rdb *redis.Client, ttl time.Duration) *MemoCache {
	return &MemoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil if miss.
func (c *MemoCache) GetList(ctx context.Context) ([]dom.Memo, error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Memo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Memo{}
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *MemoCache) SetList(ctx context.Context, list []dom.Memo) error {
	if list == nil {
		list = []dom.Memo{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyList, b, c.ttl).Err()
}

// GetItem returns the cached memo for id, or nil if miss.
func (c *MemoCache) GetItem(ctx context.Context, id int64) (*dom.Memo, error) {
	b, err := c.rdb.Get(ctx, itemKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m dom.Memo
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SetItem stores one memo in cache.
func (c *MemoCache) SetItem(ctx context.Context, m dom.Memo) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, itemKey(m.ID), b, c.ttl).Err()
}

// InvalidateList drops the cached list.
func (c *MemoCache) InvalidateList(ctx context.Context) error {
	return c.rdb.Del(ctx, keyList).Err()
}

// InvalidateItem drops the cached list and the cached memo for id.
func (c *MemoCache) InvalidateItem(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, keyList, itemKey(id)).Err()
}

func itemKey(id int64) string {
	return keyItemPrefix + strconv.FormatInt(id, 10)
}

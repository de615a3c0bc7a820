package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/EmptyEmeraldTablet/blankpage/internal/cache"
	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
	"github.com/EmptyEmeraldTablet/blankpage/internal/repo"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyContent = errors.New("content must not be empty")
)

// MemoService wraps the repo with cache-aside reads and write-through
// invalidation. Invalidation runs after the durable write and before the
// call returns, so a read issued after a write response never sees the
// pre-write cache entry. Invalidation errors are dropped: the cache TTL
// bounds how long a stale entry can outlive a missed delete.
type MemoService struct {
	repo  repo.MemoRepo
	cache *cache.MemoCache
	sf    singleflight.Group
}

// NewMemoService creates a MemoService. If c is nil, caching is disabled.
func NewMemoService(r repo.MemoRepo, c *cache.MemoCache) *MemoService {
	return &MemoService{repo: r, cache: c}
}

func (s *MemoService) Create(ctx context.Context, content string) (dom.Memo, error) {
	if strings.TrimSpace(content) == "" {
		return dom.Memo{}, ErrEmptyContent
	}
	m, err := s.repo.Create(ctx, content)
	if err != nil {
		return dom.Memo{}, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateList(ctx)
	}
	return m, nil
}

func (s *MemoService) List(ctx context.Context) ([]dom.Memo, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Memo), nil
	}
	return s.repo.List(ctx)
}

func (s *MemoService) GetByID(ctx context.Context, id int64) (dom.Memo, error) {
	if s.cache != nil {
		key := "item:" + strconv.FormatInt(id, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if m, err := s.cache.GetItem(ctx, id); err == nil && m != nil {
				return *m, nil
			}
			m, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetItem(ctx, m)
			return m, nil
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return dom.Memo{}, ErrNotFound
			}
			return dom.Memo{}, err
		}
		return v.(dom.Memo), nil
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Memo{}, ErrNotFound
		}
		return dom.Memo{}, err
	}
	return m, nil
}

func (s *MemoService) Update(ctx context.Context, id int64, content string) (dom.Memo, error) {
	if strings.TrimSpace(content) == "" {
		return dom.Memo{}, ErrEmptyContent
	}
	m, err := s.repo.Update(ctx, id, content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Memo{}, ErrNotFound
		}
		return dom.Memo{}, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateItem(ctx, id)
	}
	return m, nil
}

func (s *MemoService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if s.cache != nil {
		_ = s.cache.InvalidateItem(ctx, id)
	}
	return nil
}

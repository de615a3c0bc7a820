package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmptyEmeraldTablet/blankpage/internal/cache"
	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
)

// fakeRepo is an in-memory MemoRepo with a deterministic clock. IDs are
// never reused, matching bigserial behaviour.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	tick   time.Duration
	memos  map[int64]dom.Memo

	listCalls int
	getCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{memos: map[int64]dom.Memo{}}
}

var fakeEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func (r *fakeRepo) now() time.Time {
	r.tick += time.Second
	return fakeEpoch.Add(r.tick)
}

func (r *fakeRepo) Create(_ context.Context, content string) (dom.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	m := dom.Memo{ID: r.nextID, Content: content, CreatedAt: now, UpdatedAt: now}
	r.memos[m.ID] = m
	return m, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (dom.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	m, ok := r.memos[id]
	if !ok {
		return dom.Memo{}, pgx.ErrNoRows
	}
	return m, nil
}

func (r *fakeRepo) List(_ context.Context) ([]dom.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var list []dom.Memo
	for _, m := range r.memos {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, content string) (dom.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memos[id]
	if !ok {
		return dom.Memo{}, pgx.ErrNoRows
	}
	m.Content = content
	m.UpdatedAt = r.now()
	r.memos[id] = m
	return m, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memos[id]; !ok {
		return false, nil
	}
	delete(r.memos, id)
	return true, nil
}

func newTestService(t *testing.T) (*MemoService, *fakeRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := newFakeRepo()
	return NewMemoService(repo, cache.NewMemoCache(rdb, time.Minute)), repo
}

func TestCreateSetsEqualTimestamps(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
	assert.Positive(t, m.ID)
}

func TestCreateRejectsBlankContent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestListIsCached(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a")
	require.NoError(t, err)

	for range 3 {
		_, err := svc.List(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.listCalls, "repeat reads should hit the cache")
}

func TestListNeverStaleAfterCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "first")
	require.NoError(t, err)
	_, err = svc.List(ctx) // warm the cache
	require.NoError(t, err)

	second, err := svc.Create(ctx, "second")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest-updated first")
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdateInvalidatesItemAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "a")
	require.NoError(t, err)

	// Warm both caches.
	_, err = svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, m.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, m.CreatedAt, updated.CreatedAt, "created_at never moves")
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	got, err := svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Content, "read after write must not see the old cache entry")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Content)
}

func TestGetByIDIsCached(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "a")
	require.NoError(t, err)

	for range 3 {
		_, err := svc.GetByID(ctx, m.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 404, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "a")
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, m.ID) // warm item cache
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))

	_, err = svc.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound, "deleted memo must not survive in cache")

	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrNotFound)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, a.ID))

	b, err := svc.Create(ctx, "b")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestNilCacheDisablesCaching(t *testing.T) {
	repo := newFakeRepo()
	svc := NewMemoService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a")
	require.NoError(t, err)
	for range 3 {
		_, err := svc.List(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.listCalls)
}

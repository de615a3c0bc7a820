package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmptyEmeraldTablet/blankpage/internal/client"
	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// fakeAPI is an in-memory client.Client.
type fakeAPI struct {
	mu       sync.Mutex
	token    string
	nextID   int64
	tick     time.Duration
	memos    map[int64]dto.MemoResponse
	clip     *string
	authDead bool // every mutating call fails with ErrUnauthorized

	creates, updates int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{memos: map[int64]dto.MemoResponse{}}
}

func (f *fakeAPI) now() time.Time {
	f.tick += time.Second
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(f.tick)
}

func (f *fakeAPI) SetAuthToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) Login(_ context.Context, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != "pw" {
		return "", client.ErrInvalidCredentials
	}
	f.authDead = false
	f.token = "tok"
	return "tok", nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.SetAuthToken("")
	return nil
}

func (f *fakeAPI) ListMemos(context.Context) ([]dto.MemoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dto.MemoResponse
	for _, m := range f.memos {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeAPI) GetMemo(_ context.Context, id int64) (dto.MemoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	if !ok {
		return dto.MemoResponse{}, client.ErrNotFound
	}
	return m, nil
}

func (f *fakeAPI) CreateMemo(_ context.Context, content string) (dto.MemoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authDead {
		return dto.MemoResponse{}, client.ErrUnauthorized
	}
	f.creates++
	f.nextID++
	now := f.now()
	m := dto.MemoResponse{ID: f.nextID, Content: content, CreatedAt: now, UpdatedAt: now}
	f.memos[m.ID] = m
	return m, nil
}

func (f *fakeAPI) UpdateMemo(_ context.Context, id int64, content string) (dto.MemoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authDead {
		return dto.MemoResponse{}, client.ErrUnauthorized
	}
	m, ok := f.memos[id]
	if !ok {
		return dto.MemoResponse{}, client.ErrNotFound
	}
	f.updates++
	m.Content = content
	m.UpdatedAt = f.now()
	f.memos[id] = m
	return m, nil
}

func (f *fakeAPI) DeleteMemo(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.memos[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.memos, id)
	return nil
}

func (f *fakeAPI) GetClip(context.Context) (dto.ClipResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := dto.ClipResponse{Text: f.clip}
	if f.clip != nil {
		now := f.now()
		resp.CreatedAt = &now
	}
	return resp, nil
}

func (f *fakeAPI) SaveClip(_ context.Context, text string) (dto.ClipResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authDead {
		return dto.ClipResponse{}, client.ErrUnauthorized
	}
	f.clip = &text
	now := f.now()
	return dto.ClipResponse{Text: f.clip, CreatedAt: &now}, nil
}

func (f *fakeAPI) memoCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.memos)
}

func newTestEditor(t *testing.T, api *fakeAPI) *client.Editor {
	t.Helper()
	return client.NewEditor(client.EditorConfig{
		API:      api,
		Session:  client.NewMemorySession(),
		Debounce: testDebounce,
	})
}

func TestNewMemoAutosaveAssignsIdentity(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)

	e.SetContent("my first note")
	require.Eventually(t, func() bool { return e.CurrentID() != 0 }, waitFor, pollEvery)

	memos := e.Memos()
	require.Len(t, memos, 1)
	assert.Equal(t, e.CurrentID(), memos[0].ID)
	assert.Equal(t, "my first note", memos[0].Content)
	assert.Equal(t, 1, api.creates)
}

func TestShortNewMemoNeverAutosaves(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)

	e.SetContent("hi")
	time.Sleep(4 * testDebounce)
	assert.Zero(t, e.CurrentID())
	assert.Equal(t, 0, api.creates)

	// An explicit save has no minimum beyond non-empty.
	require.NoError(t, e.Save())
	require.Eventually(t, func() bool { return e.CurrentID() != 0 }, waitFor, pollEvery)
}

func TestSecondAutosaveUpdatesInPlace(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)

	e.SetContent("version one")
	require.Eventually(t, func() bool { return e.CurrentID() != 0 }, waitFor, pollEvery)
	id := e.CurrentID()

	e.SetContent("version two")
	require.Eventually(t, func() bool {
		m, err := api.GetMemo(context.Background(), id)
		return err == nil && m.Content == "version two"
	}, waitFor, pollEvery)

	assert.Equal(t, id, e.CurrentID(), "identity is stable across saves")
	assert.Equal(t, 1, api.creates)
	assert.Equal(t, 1, api.updates)
	assert.Equal(t, 1, api.memoCount())
}

func TestSelectSwitchesWithoutGuardOrContamination(t *testing.T) {
	api := newFakeAPI()
	a, err := api.CreateMemo(context.Background(), "note a")
	require.NoError(t, err)
	b, err := api.CreateMemo(context.Background(), "note b")
	require.NoError(t, err)

	e := newTestEditor(t, api)
	require.NoError(t, e.Refresh(context.Background()))

	require.NoError(t, e.Select(a.ID))
	e.SetContent("note a edited, unsaved")

	// Switching away wins immediately; no unsaved-changes prompt.
	require.NoError(t, e.Select(b.ID))
	assert.Equal(t, "note b", e.Content())
	assert.False(t, e.Draft().Dirty())

	// The abandoned edit's debounce must not fire into note b.
	time.Sleep(4 * testDebounce)
	got, err := api.GetMemo(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "note b", got.Content)
	got, err = api.GetMemo(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "note a", got.Content, "unsent autosave dropped on switch")
}

func TestSelectUnknownMemo(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)
	assert.ErrorIs(t, e.Select(42), client.ErrNotFound)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	api := newFakeAPI()
	m, err := api.CreateMemo(context.Background(), "keep me")
	require.NoError(t, err)

	e := newTestEditor(t, api)
	require.NoError(t, e.Refresh(context.Background()))
	require.NoError(t, e.Select(m.ID))

	require.NoError(t, e.Delete(context.Background(), func() bool { return false }))
	assert.Equal(t, 1, api.memoCount(), "declined confirmation is a no-op")
	assert.Equal(t, m.ID, e.CurrentID())
}

func TestDeleteSelectsNextOrNew(t *testing.T) {
	api := newFakeAPI()
	ctx := context.Background()
	a, err := api.CreateMemo(ctx, "note a")
	require.NoError(t, err)
	b, err := api.CreateMemo(ctx, "note b")
	require.NoError(t, err)

	e := newTestEditor(t, api)
	require.NoError(t, e.Refresh(ctx))
	require.NoError(t, e.Select(b.ID))

	require.NoError(t, e.Delete(ctx, func() bool { return true }))
	assert.Equal(t, a.ID, e.CurrentID(), "next remaining memo gets selected")
	assert.Equal(t, "note a", e.Content())

	require.NoError(t, e.Delete(ctx, func() bool { return true }))
	assert.Zero(t, e.CurrentID(), "empty working set reverts to the new-memo state")
	assert.Equal(t, "", e.Content())
	assert.Equal(t, 0, api.memoCount())
}

func TestAuthExpiryClearsSessionKeepsDraft(t *testing.T) {
	api := newFakeAPI()
	session := client.NewMemorySession()
	require.NoError(t, session.SetToken("stale"))
	expired := make(chan struct{}, 1)

	e := client.NewEditor(client.EditorConfig{
		API:           api,
		Session:       session,
		Debounce:      testDebounce,
		OnAuthExpired: func() { expired <- struct{}{} },
	})

	api.mu.Lock()
	api.authDead = true
	api.mu.Unlock()

	e.SetContent("written while token expired")
	select {
	case <-expired:
	case <-time.After(waitFor):
		t.Fatal("auth expiry not surfaced")
	}
	assert.Empty(t, session.Token(), "session credential cleared")
	assert.Equal(t, "written while token expired", e.Content(), "draft survives")
	assert.True(t, e.Draft().Dirty())

	// Re-login resumes autosave with the preserved draft.
	require.NoError(t, e.Login(context.Background(), "pw"))
	require.Eventually(t, func() bool { return !e.Draft().Dirty() }, waitFor, pollEvery)
	assert.Equal(t, 1, api.creates)
}

// Memo and clip drafts save from separate goroutines, so both can hit
// auth expiry at once; their teardowns must not race on the API client's
// token. Uses the real HTTP client so the race detector covers the
// token write and the in-flight header read.
func TestConcurrentAuthTeardown(t *testing.T) {
	inflight := make(chan struct{}, 2)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflight <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	session := client.NewMemorySession()
	require.NoError(t, session.SetToken("stale"))
	var expiries atomic.Int32
	e := client.NewEditor(client.EditorConfig{
		API:           client.NewHTTPClient(srv.URL),
		Session:       session,
		Debounce:      testDebounce,
		OnAuthExpired: func() { expiries.Add(1) },
	})

	e.SetContent("note written on a stale token")
	e.SetClipText("clip written on a stale token")

	// Hold both saves in flight, then answer them together.
	for range 2 {
		select {
		case <-inflight:
		case <-time.After(waitFor):
			t.Fatal("save request never arrived")
		}
	}
	close(release)

	require.Eventually(t, func() bool { return expiries.Load() == 2 }, waitFor, pollEvery)
	assert.Empty(t, session.Token())
	assert.True(t, e.Draft().Dirty(), "memo edit survives the teardown")
	assert.True(t, e.ClipDraft().Dirty(), "clip edit survives the teardown")
}

func TestClipDraftAutosaves(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)

	e.SetClipText("copied text")
	require.Eventually(t, func() bool {
		c, err := api.GetClip(context.Background())
		return err == nil && c.Text != nil && *c.Text == "copied text"
	}, waitFor, pollEvery)

	// Clearing the clip is a save of "", not a skipped save.
	e.SetClipText("")
	require.Eventually(t, func() bool { return !e.ClipDraft().Dirty() }, waitFor, pollEvery)
	c, err := api.GetClip(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c.Text)
	assert.Equal(t, "", *c.Text)
}

func TestLoadClipResetsDraft(t *testing.T) {
	api := newFakeAPI()
	_, err := api.SaveClip(context.Background(), "from another device")
	require.NoError(t, err)

	e := newTestEditor(t, api)
	resp, err := e.LoadClip(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "from another device", *resp.Text)
	assert.Equal(t, "from another device", e.ClipDraft().Content())
	assert.False(t, e.ClipDraft().Dirty())
}

func TestMemoAndClipDraftsAreIndependent(t *testing.T) {
	api := newFakeAPI()
	e := newTestEditor(t, api)

	e.SetContent("note body long enough")
	e.SetClipText("clip body")

	require.Eventually(t, func() bool {
		c, err := api.GetClip(context.Background())
		return e.CurrentID() != 0 && err == nil && c.Text != nil
	}, waitFor, pollEvery)

	memos := e.Memos()
	require.Len(t, memos, 1)
	assert.Equal(t, "note body long enough", memos[0].Content)
	c, _ := api.GetClip(context.Background())
	assert.Equal(t, "clip body", *c.Text)
}

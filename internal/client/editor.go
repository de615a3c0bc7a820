package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// minNewMemoLen is the trimmed length a brand-new memo needs before an
// autosave will persist it; throwaway keystrokes never hit the server.
// Explicit saves only require non-empty content.
const minNewMemoLen = 3

// EditorConfig configures an Editor.
type EditorConfig struct {
	API     Client  // required
	Session Session // required
	// Debounce for both the memo and clip drafts. Defaults to 5s.
	Debounce time.Duration
	// OnAuthExpired runs once per expiry after the session is cleared.
	OnAuthExpired func()
	// OnError receives non-auth autosave failures.
	OnError func(err error)
}

// memoRef pins the server identity a draft saves to. It is bound when
// the draft is created, so a save launched for one memo can never land
// on another after the selection changes.
type memoRef struct {
	id atomic.Int64
}

// Editor owns the working set of memos, the draft of the currently
// selected memo, and the independent clipboard draft. Each selected memo
// gets its own Draft; switching stops the previous draft's timer and
// abandons its unsent autosave, while an already in-flight save finishes
// against the previous memo's own identity.
type Editor struct {
	cfg EditorConfig

	mu      sync.Mutex
	memos   []dto.MemoResponse // newest-updated first
	current *memoRef
	draft   *Draft
	clip    *Draft
}

// NewEditor builds an editor in the empty "new memo" state. The session's
// existing token, if any, is installed on the API client.
func NewEditor(cfg EditorConfig) *Editor {
	if cfg.API == nil || cfg.Session == nil {
		panic("client: EditorConfig.API and Session are required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	e := &Editor{cfg: cfg}
	if t := cfg.Session.Token(); t != "" {
		cfg.API.SetAuthToken(t)
	}
	e.mu.Lock()
	e.switchDraftLocked(0, "")
	e.mu.Unlock()
	e.clip = NewDraft(DraftConfig{
		Save:          e.saveClip,
		Debounce:      cfg.Debounce,
		AllowEmpty:    true,
		OnAuthExpired: e.authExpired,
		OnError:       cfg.OnError,
	})
	return e
}

// Login exchanges the password for a token, persists it in the session
// and re-enables autosave on both drafts.
func (e *Editor) Login(ctx context.Context, password string) error {
	token, err := e.cfg.API.Login(ctx, password)
	if err != nil {
		return err
	}
	if err := e.cfg.Session.SetToken(token); err != nil {
		return err
	}
	e.mu.Lock()
	d := e.draft
	e.mu.Unlock()
	d.Resume()
	e.clip.Resume()
	return nil
}

// Logout invalidates the token server-side and clears the session.
func (e *Editor) Logout(ctx context.Context) error {
	err := e.cfg.API.Logout(ctx)
	if cerr := e.cfg.Session.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Refresh reloads the memo list from the server.
func (e *Editor) Refresh(ctx context.Context) error {
	list, err := e.cfg.API.ListMemos(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.memos = list
	e.mu.Unlock()
	return nil
}

// Memos returns a copy of the working set, newest-updated first.
func (e *Editor) Memos() []dto.MemoResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]dto.MemoResponse, len(e.memos))
	copy(out, e.memos)
	return out
}

// CurrentID returns the selected memo's id, 0 for an unsaved new memo.
func (e *Editor) CurrentID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.id.Load()
}

// Select switches to the memo with the given id. There is no
// unsaved-changes guard: the previous draft's unsent autosave is simply
// dropped, and its in-flight save (if any) completes on its own.
func (e *Editor) Select(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.memos {
		if m.ID == id {
			e.switchDraftLocked(id, m.Content)
			return nil
		}
	}
	return fmt.Errorf("%w: memo %d", ErrNotFound, id)
}

// NewMemo switches to the empty new-memo state.
func (e *Editor) NewMemo() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.switchDraftLocked(0, "")
}

// SetContent records an edit of the selected memo's draft.
func (e *Editor) SetContent(s string) {
	e.mu.Lock()
	d := e.draft
	e.mu.Unlock()
	d.SetContent(s)
}

// Content returns the selected memo's working copy.
func (e *Editor) Content() string {
	e.mu.Lock()
	d := e.draft
	e.mu.Unlock()
	return d.Content()
}

// Save persists the selected memo's draft immediately.
func (e *Editor) Save() error {
	e.mu.Lock()
	d := e.draft
	e.mu.Unlock()
	return d.Save()
}

// Draft exposes the selected memo's draft state machine.
func (e *Editor) Draft() *Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Delete removes the selected memo after confirm returns true. On
// success the next memo in the working set is selected, or the editor
// reverts to the new-memo state when none remain. An unsaved new memo
// just resets.
func (e *Editor) Delete(ctx context.Context, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	e.mu.Lock()
	id := e.current.id.Load()
	e.mu.Unlock()
	if id == 0 {
		e.NewMemo()
		return nil
	}
	if err := e.cfg.API.DeleteMemo(ctx, id); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.memos[:0]
	for _, m := range e.memos {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	e.memos = kept
	if len(e.memos) > 0 {
		e.switchDraftLocked(e.memos[0].ID, e.memos[0].Content)
	} else {
		e.switchDraftLocked(0, "")
	}
	return nil
}

// SetClipText records an edit of the clipboard draft.
func (e *Editor) SetClipText(s string) {
	e.clip.SetContent(s)
}

// SaveClip persists the clipboard draft immediately. An empty clip is a
// valid "cleared" value, so the clip draft saves blank content too.
func (e *Editor) SaveClip() error {
	return e.clip.Save()
}

// LoadClip fetches the clip slot and resets the clipboard draft to it.
// An empty slot resets to empty content.
func (e *Editor) LoadClip(ctx context.Context) (dto.ClipResponse, error) {
	resp, err := e.cfg.API.GetClip(ctx)
	if err != nil {
		return dto.ClipResponse{}, err
	}
	text := ""
	if resp.Text != nil {
		text = *resp.Text
	}
	e.clip.Reset(text)
	return resp, nil
}

// ClipDraft exposes the clipboard draft state machine.
func (e *Editor) ClipDraft() *Draft {
	return e.clip
}

// switchDraftLocked installs a fresh draft bound to id with the given
// starting snapshot. Caller holds e.mu.
func (e *Editor) switchDraftLocked(id int64, content string) {
	if e.draft != nil {
		e.draft.Stop()
	}
	ref := &memoRef{}
	ref.id.Store(id)
	e.current = ref
	d := NewDraft(DraftConfig{
		Save:     e.saveMemo(ref),
		Debounce: e.cfg.Debounce,
		MinAutosaveLen: func() int {
			if ref.id.Load() == 0 {
				return minNewMemoLen
			}
			return 0
		},
		OnAuthExpired: e.authExpired,
		OnError:       e.cfg.OnError,
	})
	d.Reset(content)
	e.draft = d
}

// saveMemo returns the SaveFunc for a draft bound to ref: create on the
// first save of a new memo (ref picks up the assigned id), update after.
func (e *Editor) saveMemo(ref *memoRef) SaveFunc {
	return func(ctx context.Context, content string) (string, error) {
		id := ref.id.Load()
		var (
			m   dto.MemoResponse
			err error
		)
		if id == 0 {
			m, err = e.cfg.API.CreateMemo(ctx, content)
		} else {
			m, err = e.cfg.API.UpdateMemo(ctx, id, content)
		}
		if err != nil {
			return "", err
		}
		ref.id.Store(m.ID)
		e.mu.Lock()
		e.upsertLocked(m)
		e.mu.Unlock()
		return m.Content, nil
	}
}

func (e *Editor) saveClip(ctx context.Context, text string) (string, error) {
	resp, err := e.cfg.API.SaveClip(ctx, text)
	if err != nil {
		return "", err
	}
	if resp.Text == nil {
		return "", nil
	}
	return *resp.Text, nil
}

// upsertLocked replaces or inserts the canonical record at the head of
// the working set; a just-written memo is by definition newest-updated.
func (e *Editor) upsertLocked(m dto.MemoResponse) {
	kept := make([]dto.MemoResponse, 0, len(e.memos)+1)
	kept = append(kept, m)
	for _, old := range e.memos {
		if old.ID != m.ID {
			kept = append(kept, old)
		}
	}
	e.memos = kept
}

// authExpired tears the session down once and surfaces the expiry. The
// dirty draft keeps its content so nothing is lost across re-login.
func (e *Editor) authExpired() {
	_ = e.cfg.Session.Clear()
	e.cfg.API.SetAuthToken("")
	if e.cfg.OnAuthExpired != nil {
		e.cfg.OnAuthExpired()
	}
}

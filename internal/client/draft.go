package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle of a draft between edits and saves.
type State int

const (
	// StateClean: content equals the last server-acknowledged snapshot.
	StateClean State = iota
	// StateDirty: edited since the last acknowledgement; a debounce
	// timer may be pending.
	StateDirty
	// StateSaving: exactly one save request is in flight.
	StateSaving
	// StateSavingDirty: a save is in flight and edits arrived meanwhile;
	// one follow-up save runs as soon as the flight resolves.
	StateSavingDirty
)

const defaultDebounce = 5 * time.Second

// SaveFunc persists content and returns the content the server
// acknowledged as canonical.
type SaveFunc func(ctx context.Context, content string) (string, error)

// DraftConfig configures a Draft.
type DraftConfig struct {
	// Save is called with the snapshot to persist. Required.
	Save SaveFunc
	// Debounce is the quiet period before an autosave. Defaults to 5s.
	Debounce time.Duration
	// SaveTimeout bounds one save attempt. Defaults to requestTimeout.
	SaveTimeout time.Duration
	// MinAutosaveLen, when set, gates debounce-triggered saves on the
	// trimmed content length. Explicit Save calls ignore it.
	MinAutosaveLen func() int
	// AllowEmpty permits saving blank content. Off for memos (a memo is
	// never persisted empty), on for the clipboard where the empty
	// string is the valid "cleared" value.
	AllowEmpty bool
	// OnSaved runs after a save is acknowledged, outside the draft lock.
	OnSaved func(acked string)
	// OnError runs on non-auth save failures. The draft stays dirty and
	// nothing is retried until the next edit or explicit Save.
	OnError func(err error)
	// OnAuthExpired runs when a save fails with ErrUnauthorized. The
	// draft stays dirty and autosave stops until Resume.
	OnAuthExpired func()
}

// Draft is the in-memory working copy of one note or of the clipboard
// text. It owns a single cancellable debounce task and serializes saves:
// at most one request in flight, at most one deferred follow-up, so
// acknowledgements can never arrive out of order for the same draft.
type Draft struct {
	cfg DraftConfig

	mu       sync.Mutex
	content  string
	acked    string
	state    State
	authDown bool
	gen      int // bumped by Reset, stale flights discard their result
	timer    *time.Timer
}

// NewDraft returns a clean draft with empty content.
func NewDraft(cfg DraftConfig) *Draft {
	if cfg.Save == nil {
		panic("client: DraftConfig.Save is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = requestTimeout
	}
	return &Draft{cfg: cfg}
}

// SetContent records an edit. While clean or dirty it (re)starts the
// debounce timer; while a save is in flight it only marks the follow-up,
// the in-flight request is never aborted.
func (d *Draft) SetContent(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = s
	switch d.state {
	case StateClean, StateDirty:
		if s == d.acked {
			d.state = StateClean
			d.stopTimerLocked()
			return
		}
		d.state = StateDirty
		d.restartTimerLocked()
	case StateSaving:
		d.state = StateSavingDirty
	case StateSavingDirty:
	}
}

// Save triggers an immediate save of the current content, bypassing the
// debounce window and the autosave length gate. A clean draft is a no-op;
// a draft with a save already in flight gets the follow-up flag instead
// of a second request.
func (d *Draft) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.authDown {
		return ErrUnauthorized
	}
	switch d.state {
	case StateClean:
		return nil
	case StateDirty:
		if !d.cfg.AllowEmpty && strings.TrimSpace(d.content) == "" {
			return nil
		}
		d.startSaveLocked()
	case StateSaving:
		d.state = StateSavingDirty
	case StateSavingDirty:
	}
	return nil
}

// Reset replaces the draft's snapshot, e.g. when a different note is
// selected. The pending debounce task is cancelled and any in-flight
// save finishes without touching this draft again.
func (d *Draft) Reset(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.content = content
	d.acked = content
	d.state = StateClean
	d.stopTimerLocked()
}

// Resume re-enables autosave after a successful re-login. A still-dirty
// draft gets a fresh debounce window.
func (d *Draft) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authDown = false
	if d.state == StateDirty {
		d.restartTimerLocked()
	}
}

// Stop cancels the pending debounce task. In-flight saves still resolve.
func (d *Draft) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
}

// State returns the draft's current state.
func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dirty reports whether the draft differs from the acknowledged snapshot.
func (d *Draft) Dirty() bool {
	return d.State() != StateClean
}

// Content returns the working copy.
func (d *Draft) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// Acked returns the last server-acknowledged snapshot.
func (d *Draft) Acked() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acked
}

func (d *Draft) debounceFired() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.authDown {
		return
	}
	switch d.state {
	case StateDirty:
		trimmed := strings.TrimSpace(d.content)
		if trimmed == "" && !d.cfg.AllowEmpty {
			return
		}
		if d.cfg.MinAutosaveLen != nil && len([]rune(trimmed)) < d.cfg.MinAutosaveLen() {
			return
		}
		d.startSaveLocked()
	case StateSaving:
		d.state = StateSavingDirty
	}
}

// startSaveLocked moves to StateSaving and launches the request.
// Callers hold d.mu and have already established the draft is dirty.
func (d *Draft) startSaveLocked() {
	d.state = StateSaving
	d.stopTimerLocked()
	snapshot := d.content
	gen := d.gen
	go d.runSave(snapshot, gen)
}

func (d *Draft) runSave(snapshot string, gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SaveTimeout)
	acked, err := d.cfg.Save(ctx, snapshot)
	cancel()

	d.mu.Lock()
	if gen != d.gen {
		// Draft was Reset mid-flight; the result belongs to a snapshot
		// this draft no longer holds.
		d.mu.Unlock()
		return
	}

	if err != nil {
		d.state = StateDirty
		var cb func()
		if errors.Is(err, ErrUnauthorized) {
			d.authDown = true
			cb = d.cfg.OnAuthExpired
		} else if d.cfg.OnError != nil {
			e := err
			cb = func() { d.cfg.OnError(e) }
		}
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	d.acked = acked
	if d.content != d.acked && (d.cfg.AllowEmpty || strings.TrimSpace(d.content) != "") {
		// Edits landed while the save was in flight: one immediate
		// follow-up, no fresh debounce window.
		d.startSaveLocked()
	} else if d.content != d.acked {
		d.state = StateDirty
	} else {
		d.state = StateClean
	}
	d.mu.Unlock()

	if d.cfg.OnSaved != nil {
		d.cfg.OnSaved(acked)
	}
}

func (d *Draft) restartTimerLocked() {
	d.stopTimerLocked()
	d.timer = time.AfterFunc(d.cfg.Debounce, d.debounceFired)
}

func (d *Draft) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

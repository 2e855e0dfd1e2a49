package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/content"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/fileio"
)

// State is an observable snapshot of the session.
type State struct {
	// Path is the absolute file path, or "" for an untitled document.
	Path string

	// Content is the current document text.
	Content content.Content

	// Dirty is false only when Content matches what was last loaded from
	// or saved to Path.
	Dirty bool

	// LastError is the most recent file error, cleared by the next
	// successful New, Edit, open or save.
	LastError *fileio.Error

	// Theme is the selected theme name.
	Theme string

	CanUndo bool
	CanRedo bool

	// Pending counts effects issued but not yet reported back.
	Pending int

	// Revision increments whenever Content is replaced by something other
	// than an Edit: New, open, undo and redo.
	Revision uint64
}

// Transition describes what one intent did to the session.
type Transition struct {
	Intent  Intent
	Before  State
	After   State
	Effects []Effect

	// Err is the error this intent stored in LastError, if any.
	Err *fileio.Error

	// Stale is set on a result whose effect was issued for a document that
	// has since been replaced by New or another open. A stale open is still
	// applied; a stale save only settles its effect.
	Stale bool

	// Dropped is set on an Edit based on an older revision.
	Dropped bool
}

// Changed reports whether the transition altered the observable state.
func (t Transition) Changed() bool {
	return t.Before != t.After
}

// Controller owns the session state and turns intents into state changes
// and effects. It never blocks on I/O. All methods are safe for concurrent
// use; intents are applied one at a time.
type Controller struct {
	mu sync.Mutex

	files   Files
	history *history.History

	path      string
	content   content.Content
	dirty     bool
	baseline  content.Content
	hasSaved  bool
	lastError *fileio.Error
	theme     string
	revision  uint64

	// generation identifies the current document. It changes whenever the
	// document is replaced so late results can be recognized.
	generation uint64
	pending    map[uuid.UUID]uint64

	coalesce time.Duration
	now      func() time.Time
	inBurst  bool
	lastEdit time.Time
	maxUndo  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithTheme sets the initial theme.
func WithTheme(theme string) Option {
	return func(c *Controller) {
		c.theme = theme
	}
}

// WithCoalesceWindow merges consecutive edits arriving within d of each
// other into one undo step. Zero, the default, records every edit.
func WithCoalesceWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.coalesce = d
		}
	}
}

// WithHistoryLimit bounds the number of undo entries. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxUndo = n
		}
	}
}

// WithClock sets the time source used for edit coalescing.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a controller for an untitled, empty document.
// The initial document counts as unsaved.
func NewController(files Files, opts ...Option) *Controller {
	c := &Controller{
		files:   files,
		dirty:   true,
		pending: make(map[uuid.UUID]uint64),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.history = history.New(content.Content{}, history.WithMaxEntries(c.maxUndo))
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Update applies in and returns the resulting state along with any effects
// the caller must run.
func (c *Controller) Update(in Intent) (State, []Effect) {
	t := c.Apply(in)
	return t.After, t.Effects
}

// Apply is Update with the full transition record.
func (c *Controller) Apply(in Intent) Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := Transition{Intent: in, Before: c.stateLocked()}

	if _, ok := in.(Edit); !ok {
		c.inBurst = false
	}

	switch in := in.(type) {
	case New:
		c.replaceLocked("", content.Content{}, false)
		c.lastError = nil
	case Edit:
		if in.hasBase && in.base != c.revision {
			t.Dropped = true
			break
		}
		c.editLocked(in.Content)
	case Open:
		t.Effects = append(t.Effects, c.effectLocked(EffectPickAndLoad, "", content.Content{}))
	case OpenPath:
		t.Effects = append(t.Effects, c.effectLocked(EffectLoadFile, in.Path, content.Content{}))
	case Save:
		// Nothing to write for a clean file on disk.
		if !c.dirty && c.path != "" {
			break
		}
		t.Effects = append(t.Effects, c.effectLocked(EffectSaveFile, c.path, c.content))
	case SaveAs:
		t.Effects = append(t.Effects, c.effectLocked(EffectSaveFile, "", c.content))
	case Undo:
		if prev, ok := c.history.Undo(); ok {
			c.restoreLocked(prev)
		}
	case Redo:
		if next, ok := c.history.Redo(); ok {
			c.restoreLocked(next)
		}
	case SelectTheme:
		c.theme = in.Theme
	case FileOpened:
		t.Stale = c.settleLocked(in.Effect)
		if in.Err != nil {
			t.Err = c.failLocked("open", in.Err)
			break
		}
		c.replaceLocked(in.Loaded.Path, in.Loaded.Content, true)
		c.lastError = nil
	case FileSaved:
		t.Stale = c.settleLocked(in.Effect)
		if in.Err != nil {
			t.Err = c.failLocked("save", in.Err)
			break
		}
		// The file was written, but it holds an older document.
		if t.Stale {
			break
		}
		c.path = in.Path
		c.baseline = in.Content
		c.hasSaved = true
		c.dirty = !c.content.Equal(in.Content)
		c.lastError = nil
	}

	t.After = c.stateLocked()
	return t
}

// editLocked records new text typed by the user.
func (c *Controller) editLocked(text content.Content) {
	if text.Equal(c.content) {
		return
	}

	now := c.now()
	amended := false
	if c.coalesce > 0 && c.inBurst && now.Sub(c.lastEdit) <= c.coalesce {
		amended = c.history.Amend(text)
	}
	if !amended {
		c.history.RecordEdit(text)
	}
	c.inBurst = true
	c.lastEdit = now

	c.content = text
	c.dirty = true
	c.lastError = nil
}

// replaceLocked swaps in a different document and reseeds history.
func (c *Controller) replaceLocked(path string, text content.Content, saved bool) {
	c.path = path
	c.content = text
	c.history.Reset(text)
	c.baseline = text
	c.hasSaved = saved
	c.dirty = !saved
	c.revision++
	c.generation++
}

// restoreLocked applies history content without recording it.
func (c *Controller) restoreLocked(text content.Content) {
	c.content = text
	c.dirty = !c.hasSaved || !text.Equal(c.baseline)
	c.revision++
}

// failLocked records a failed effect and leaves the document alone.
func (c *Controller) failLocked(op string, err error) *fileio.Error {
	c.lastError = fileio.AsError(op, err)
	return c.lastError
}

func (c *Controller) effectLocked(kind EffectKind, path string, text content.Content) Effect {
	e := Effect{
		ID:      uuid.New(),
		Kind:    kind,
		Path:    path,
		Content: text,
		files:   c.files,
	}
	c.pending[e.ID] = c.generation
	return e
}

// settleLocked retires a pending effect and reports whether its result
// arrives for a document that has been replaced since it was issued.
// Results of unknown effects are never stale.
func (c *Controller) settleLocked(id uuid.UUID) bool {
	gen, ok := c.pending[id]
	if !ok {
		return false
	}
	delete(c.pending, id)
	return gen != c.generation
}

func (c *Controller) stateLocked() State {
	return State{
		Path:      c.path,
		Content:   c.content,
		Dirty:     c.dirty,
		LastError: c.lastError,
		Theme:     c.theme,
		CanUndo:   c.history.CanUndo(),
		CanRedo:   c.history.CanRedo(),
		Pending:   len(c.pending),
		Revision:  c.revision,
	}
}

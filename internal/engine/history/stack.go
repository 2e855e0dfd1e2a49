package history

import (
	"sync"
	"time"

	"github.com/dshills/quill/internal/engine/content"
)

// entry is one snapshot on a stack.
type entry struct {
	content   content.Content
	timestamp time.Time
	seed      bool
}

// EntryInfo describes a snapshot without exposing the stacks.
type EntryInfo struct {
	Size      int
	Timestamp time.Time
}

// History manages the undo/redo stacks of one session.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// 0 means unbounded
	maxEntries int
}

// Option configures a History.
type Option func(*History)

// WithMaxEntries bounds the undo stack. Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(h *History) {
		if n < 0 {
			n = 0
		}
		h.maxEntries = n
	}
}

// New creates a history seeded with one snapshot of seed.
func New(seed content.Content, opts ...Option) *History {
	h := &History{}
	for _, opt := range opts {
		opt(h)
	}
	h.undoStack = []*entry{newSeed(seed)}
	return h
}

func newSeed(c content.Content) *entry {
	return &entry{content: c, timestamp: time.Now(), seed: true}
}

// RecordEdit pushes c as the new current state.
// The redo stack is discarded.
func (h *History) RecordEdit(c content.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, &entry{
		content:   c,
		timestamp: time.Now(),
	})
	h.redoStack = nil

	h.trimLocked()
}

// Amend replaces the current state with c when the current state was
// produced by an edit. It returns false, leaving history untouched, when the
// top of the undo stack is the seed snapshot.
func (h *History) Amend(c content.Content) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	top := h.undoStack[len(h.undoStack)-1]
	if top.seed {
		return false
	}

	h.undoStack[len(h.undoStack)-1] = &entry{
		content:   c,
		timestamp: time.Now(),
	}
	h.redoStack = nil
	return true
}

// Undo steps back one state and returns the content to restore.
// It returns false when there is nothing to undo.
func (h *History) Undo() (content.Content, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) < 2 {
		return content.Content{}, false
	}

	top := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, top)

	return h.undoStack[len(h.undoStack)-1].content, true
}

// Redo re-applies the most recently undone state and returns it.
// It returns false when there is nothing to redo.
func (h *History) Redo() (content.Content, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return content.Content{}, false
	}

	top := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, top)

	return top.content, true
}

// Reset discards both stacks and reseeds the history with seed.
func (h *History) Reset(seed content.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = []*entry{newSeed(seed)}
	h.redoStack = nil
}

// Current returns the content at the top of the undo stack.
func (h *History) Current() content.Content {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.undoStack[len(h.undoStack)-1].content
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 1
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) - 1
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

// PeekUndo returns info about the entry Undo would discard.
func (h *History) PeekUndo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) < 2 {
		return EntryInfo{}, false
	}
	return info(h.undoStack[len(h.undoStack)-1]), true
}

// PeekRedo returns info about the next redo step without applying it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return info(h.redoStack[len(h.redoStack)-1]), true
}

// SetMaxEntries changes the bound on the undo stack.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max < 0 {
		max = 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the bound on the undo stack (0 = unbounded).
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// trimLocked drops the oldest entries beyond maxEntries.
// The new bottom entry becomes the seed so it is never amended.
func (h *History) trimLocked() {
	if h.maxEntries <= 0 || len(h.undoStack) <= h.maxEntries {
		return
	}

	excess := len(h.undoStack) - h.maxEntries
	h.undoStack = h.undoStack[excess:]

	bottom := *h.undoStack[0]
	bottom.seed = true
	h.undoStack[0] = &bottom
}

func infos(stack []*entry) []EntryInfo {
	result := make([]EntryInfo, len(stack))
	for i, e := range stack {
		result[i] = info(e)
	}
	return result
}

func info(e *entry) EntryInfo {
	return EntryInfo{Size: e.content.Len(), Timestamp: e.timestamp}
}

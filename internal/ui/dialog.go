package ui

import (
	"context"
	"sync"

	"github.com/dshills/quill/internal/fileio"
)

// DialogKind says which prompt a Request wants.
type DialogKind int

const (
	// DialogOpen asks for an existing file.
	DialogOpen DialogKind = iota
	// DialogSave asks for a location to write to.
	DialogSave
)

// String returns the string representation of the kind.
func (k DialogKind) String() string {
	if k == DialogSave {
		return "save"
	}
	return "open"
}

// Request is one pending prompt. The host answers it exactly once; later
// answers are ignored.
type Request struct {
	Kind  DialogKind
	Title string

	ctx   context.Context
	once  sync.Once
	reply chan answer
}

type answer struct {
	path string
	err  error
}

// Answer resolves the prompt with path.
func (r *Request) Answer(path string) {
	if path == "" {
		r.Dismiss()
		return
	}
	r.resolve(answer{path: path})
}

// Dismiss resolves the prompt as closed by the user.
func (r *Request) Dismiss() {
	r.resolve(answer{err: fileio.ErrDialogClosed})
}

// Done is closed when the caller stopped waiting, e.g. on shutdown.
func (r *Request) Done() <-chan struct{} {
	return r.ctx.Done()
}

func (r *Request) resolve(a answer) {
	r.once.Do(func() {
		r.reply <- a
	})
}

// Dialog implements fileio.Picker by handing each prompt to the UI
// goroutine and waiting for its answer. Prompts are served one at a time.
type Dialog struct {
	requests chan *Request
}

var _ fileio.Picker = (*Dialog)(nil)

// NewDialog creates a Dialog with no host attached. Prompts wait until a
// host reads Requests or the caller's context ends.
func NewDialog() *Dialog {
	return &Dialog{requests: make(chan *Request)}
}

// Requests delivers prompts to the host.
func (d *Dialog) Requests() <-chan *Request {
	return d.requests
}

// PickOpen asks the host for a file to open.
func (d *Dialog) PickOpen(ctx context.Context, title string) (string, error) {
	return d.ask(ctx, DialogOpen, title)
}

// PickSave asks the host for a location to save to.
func (d *Dialog) PickSave(ctx context.Context, title string) (string, error) {
	return d.ask(ctx, DialogSave, title)
}

func (d *Dialog) ask(ctx context.Context, kind DialogKind, title string) (string, error) {
	req := &Request{
		Kind:  kind,
		Title: title,
		ctx:   ctx,
		reply: make(chan answer, 1),
	}

	select {
	case d.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case a := <-req.reply:
		return a.path, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

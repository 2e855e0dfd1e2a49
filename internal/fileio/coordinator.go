package fileio

import (
	"context"
	"io/fs"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/content"
	"github.com/dshills/quill/internal/project/vfs"
)

// Dialog titles shown by pickers.
const (
	OpenTitle = "Choose a text file..."
	SaveTitle = "Choose a file name..."
)

// Loaded is a successfully read document.
type Loaded struct {
	Path    string
	Content content.Content
}

// Coordinator performs the session's file operations. It holds no session
// state: results are returned to the caller, which decides what they mean.
//
// Every method blocks until the prompt is answered and the I/O is done, so
// callers run them off the UI goroutine. Methods are safe for concurrent use.
type Coordinator struct {
	fs     vfs.VFS
	picker Picker
}

// newFileMode is the permission set for files that did not exist before a save.
const newFileMode fs.FileMode = 0644

// NewCoordinator creates a Coordinator over fsys that asks picker for paths.
func NewCoordinator(fsys vfs.VFS, picker Picker) *Coordinator {
	return &Coordinator{fs: fsys, picker: picker}
}

// PickAndLoad asks the user for a file and loads it.
// A dismissed prompt fails with ErrDialogClosed.
func (c *Coordinator) PickAndLoad(ctx context.Context) (Loaded, error) {
	path, err := c.pick(ctx, "open")
	if err != nil {
		return Loaded{}, err
	}
	return c.Load(ctx, path)
}

// Load reads the file at path as text.
func (c *Coordinator) Load(ctx context.Context, path string) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, ioFailed("load", path, err)
	}

	absPath, err := c.fs.Abs(path)
	if err != nil {
		return Loaded{}, ioFailed("load", path, err)
	}

	info, err := c.fs.Stat(absPath)
	if err != nil {
		return Loaded{}, ioFailed("load", absPath, err)
	}
	if info.IsDir() {
		return Loaded{}, &Error{
			Kind:     KindIOFailed,
			Category: CategoryIsDirectory,
			Op:       "load",
			Path:     absPath,
		}
	}

	data, err := c.fs.ReadFile(absPath)
	if err != nil {
		return Loaded{}, ioFailed("load", absPath, err)
	}
	if !utf8.Valid(data) {
		return Loaded{}, ioFailed("load", absPath, errInvalidUTF8)
	}

	return Loaded{Path: absPath, Content: content.FromBytes(data)}, nil
}

// Save writes text to path, replacing any existing file, and returns the
// absolute path written. An empty path asks the user for a location first;
// a dismissed prompt fails with ErrDialogClosed and writes nothing.
func (c *Coordinator) Save(ctx context.Context, path string, text content.Content) (string, error) {
	if path == "" {
		picked, err := c.pick(ctx, "save")
		if err != nil {
			return "", err
		}
		path = picked
	}

	absPath, err := c.fs.Abs(path)
	if err != nil {
		return "", ioFailed("save", path, err)
	}

	// A save that has started is not abandoned: the context is only
	// consulted by the prompt above.
	if err := vfs.WriteFileAtomic(c.fs, absPath, text.Bytes(), newFileMode); err != nil {
		return "", ioFailed("save", absPath, err)
	}
	return absPath, nil
}

// pick runs the open or save prompt and normalizes its outcome.
func (c *Coordinator) pick(ctx context.Context, op string) (string, error) {
	if c.picker == nil {
		return "", dialogClosed(op)
	}

	var path string
	var err error
	if op == "save" {
		path, err = c.picker.PickSave(ctx, SaveTitle)
	} else {
		path, err = c.picker.PickOpen(ctx, OpenTitle)
	}

	if err != nil {
		fe := dialogClosed(op)
		if !IsDialogClosed(err) {
			fe.Err = err
		}
		return "", fe
	}
	if path == "" {
		return "", dialogClosed(op)
	}
	return path, nil
}

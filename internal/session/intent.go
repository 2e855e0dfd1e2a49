package session

import (
	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/content"
	"github.com/dshills/quill/internal/fileio"
)

// Intent is a request to change the session. The set is closed: only the
// types in this file implement it.
type Intent interface {
	// Name returns a short identifier used in logs and hook events.
	Name() string

	intent()
}

// New discards the current document and starts an empty, untitled one.
type New struct{}

// Edit replaces the document text with Content.
type Edit struct {
	Content content.Content

	base    uint64
	hasBase bool
}

// EditAt is an Edit made against the document as of revision rev. It is
// dropped if the content has been replaced since, so text typed over an
// old revision cannot overwrite an undo, redo or open.
func EditAt(rev uint64, text content.Content) Edit {
	return Edit{Content: text, base: rev, hasBase: true}
}

// Open asks the user for a file and loads it.
type Open struct{}

// OpenPath loads the file at Path without prompting.
type OpenPath struct {
	Path string
}

// Save writes the document to its path, prompting when it has none.
type Save struct{}

// SaveAs writes the document to a location chosen by the user.
type SaveAs struct{}

// Undo steps back one history entry.
type Undo struct{}

// Redo re-applies the most recently undone entry.
type Redo struct{}

// SelectTheme records the user's theme choice.
type SelectTheme struct {
	Theme string
}

// FileOpened reports the outcome of a load effect.
type FileOpened struct {
	Effect uuid.UUID
	Loaded fileio.Loaded
	Err    error
}

// FileSaved reports the outcome of a save effect. Content is exactly what
// was handed to the writer.
type FileSaved struct {
	Effect  uuid.UUID
	Path    string
	Content content.Content
	Err     error
}

func (New) Name() string         { return "new" }
func (Edit) Name() string        { return "edit" }
func (Open) Name() string        { return "open" }
func (OpenPath) Name() string    { return "open_path" }
func (Save) Name() string        { return "save" }
func (SaveAs) Name() string      { return "save_as" }
func (Undo) Name() string        { return "undo" }
func (Redo) Name() string        { return "redo" }
func (SelectTheme) Name() string { return "select_theme" }
func (FileOpened) Name() string  { return "file_opened" }
func (FileSaved) Name() string   { return "file_saved" }

func (New) intent()         {}
func (Edit) intent()        {}
func (Open) intent()        {}
func (OpenPath) intent()    {}
func (Save) intent()        {}
func (SaveAs) intent()      {}
func (Undo) intent()        {}
func (Redo) intent()        {}
func (SelectTheme) intent() {}
func (FileOpened) intent()  {}
func (FileSaved) intent()   {}

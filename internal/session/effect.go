package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/content"
	"github.com/dshills/quill/internal/fileio"
)

// Files performs the blocking file work behind effects.
// *fileio.Coordinator implements it.
type Files interface {
	PickAndLoad(ctx context.Context) (fileio.Loaded, error)
	Load(ctx context.Context, path string) (fileio.Loaded, error)
	Save(ctx context.Context, path string, text content.Content) (string, error)
}

var _ Files = (*fileio.Coordinator)(nil)

// EffectKind identifies the work an effect performs.
type EffectKind int

const (
	// EffectLoadFile loads a known path.
	EffectLoadFile EffectKind = iota
	// EffectPickAndLoad prompts for a file, then loads it.
	EffectPickAndLoad
	// EffectSaveFile writes content, prompting first when Path is empty.
	EffectSaveFile
)

// String returns the string representation of the kind.
func (k EffectKind) String() string {
	switch k {
	case EffectLoadFile:
		return "load"
	case EffectPickAndLoad:
		return "pick_and_load"
	case EffectSaveFile:
		return "save"
	default:
		return "unknown"
	}
}

// Effect is file work requested by the controller. Running it blocks; the
// returned intent must be fed back to the controller that issued it.
type Effect struct {
	ID      uuid.UUID
	Kind    EffectKind
	Path    string
	Content content.Content // save effects only

	files Files
}

// Run performs the effect and returns its result intent.
func (e Effect) Run(ctx context.Context) Intent {
	switch e.Kind {
	case EffectLoadFile:
		loaded, err := e.files.Load(ctx, e.Path)
		return FileOpened{Effect: e.ID, Loaded: loaded, Err: err}
	case EffectPickAndLoad:
		loaded, err := e.files.PickAndLoad(ctx)
		return FileOpened{Effect: e.ID, Loaded: loaded, Err: err}
	default:
		path, err := e.files.Save(ctx, e.Path, e.Content)
		return FileSaved{Effect: e.ID, Path: path, Content: e.Content, Err: err}
	}
}

// Failed returns the result intent reporting err for this effect.
func (e Effect) Failed(err error) Intent {
	if e.Kind == EffectSaveFile {
		return FileSaved{Effect: e.ID, Content: e.Content, Err: err}
	}
	return FileOpened{Effect: e.ID, Err: err}
}

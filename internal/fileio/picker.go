package fileio

import "context"

// Picker is the dialog boundary: a modal request for a path.
//
// Implementations return ErrDialogClosed (or any error) when the user
// dismisses the prompt, and should return promptly once ctx is done.
type Picker interface {
	// PickOpen asks for an existing file to open.
	PickOpen(ctx context.Context, title string) (string, error)

	// PickSave asks for a location to save to.
	PickSave(ctx context.Context, title string) (string, error)
}

// StaticPicker answers every prompt with a fixed path. An empty path
// behaves like a dismissed dialog. It serves hosts without interactive
// prompts.
type StaticPicker struct {
	OpenPath string
	SavePath string
}

// PickOpen returns OpenPath.
func (p StaticPicker) PickOpen(ctx context.Context, _ string) (string, error) {
	return p.answer(ctx, p.OpenPath)
}

// PickSave returns SavePath.
func (p StaticPicker) PickSave(ctx context.Context, _ string) (string, error) {
	return p.answer(ctx, p.SavePath)
}

func (p StaticPicker) answer(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrDialogClosed
	}
	return path, nil
}

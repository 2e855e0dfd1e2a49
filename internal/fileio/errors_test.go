package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{dialogClosed("open"), "open: dialog closed"},
		{&Error{Kind: KindDialogClosed}, "dialog closed"},
		{ioFailed("load", "/a.txt", fs.ErrNotExist), "load /a.txt: not found"},
		{ioFailed("save", "/a.txt", fs.ErrPermission), "save /a.txt: permission denied"},
		{ioFailed("save", "", errors.New("boom")), "save: other (boom)"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	notFound := ioFailed("load", "/a.txt", fs.ErrNotExist)

	if !errors.Is(notFound, ErrNotFound) {
		t.Error("should match ErrNotFound")
	}
	if errors.Is(notFound, ErrPermissionDenied) {
		t.Error("should not match ErrPermissionDenied")
	}
	if errors.Is(notFound, ErrDialogClosed) {
		t.Error("should not match ErrDialogClosed")
	}
	if !errors.Is(notFound, fs.ErrNotExist) {
		t.Error("cause should stay reachable")
	}

	wrapped := fmt.Errorf("opening: %w", dialogClosed("open"))
	if !IsDialogClosed(wrapped) {
		t.Error("wrapped DialogClosed should be detected")
	}
}

func TestCategoryOf(t *testing.T) {
	if _, ok := CategoryOf(errors.New("plain")); ok {
		t.Error("plain errors have no category")
	}
	if _, ok := CategoryOf(nil); ok {
		t.Error("nil has no category")
	}
	cat, ok := CategoryOf(fmt.Errorf("x: %w", ioFailed("save", "/a", fs.ErrPermission)))
	if !ok || cat != CategoryPermissionDenied {
		t.Errorf("CategoryOf() = %v, %v", cat, ok)
	}
}

func TestAsError(t *testing.T) {
	if AsError("open", nil) != nil {
		t.Error("AsError(nil) should be nil")
	}

	orig := ioFailed("load", "/a", fs.ErrNotExist)
	if got := AsError("open", fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("AsError should unwrap to the original, got %v", got)
	}

	got := AsError("save", errors.New("disk on fire"))
	if got.Kind != KindIOFailed || got.Category != CategoryOther || got.Op != "save" {
		t.Errorf("foreign error classified as %+v", got)
	}
}

func TestStrings(t *testing.T) {
	if KindDialogClosed.String() != "dialog closed" || KindIOFailed.String() != "io failed" {
		t.Error("unexpected Kind strings")
	}
	want := map[Category]string{
		CategoryOther:            "other",
		CategoryNotFound:         "not found",
		CategoryPermissionDenied: "permission denied",
		CategoryInvalidData:      "invalid data",
		CategoryIsDirectory:      "is a directory",
	}
	for cat, s := range want {
		if cat.String() != s {
			t.Errorf("%d.String() = %q, want %q", cat, cat.String(), s)
		}
	}
}

func TestStaticPicker(t *testing.T) {
	p := StaticPicker{OpenPath: "/a.txt"}

	got, err := p.PickOpen(t.Context(), OpenTitle)
	if err != nil || got != "/a.txt" {
		t.Errorf("PickOpen() = %q, %v", got, err)
	}
	if _, err := p.PickSave(t.Context(), SaveTitle); !IsDialogClosed(err) {
		t.Errorf("empty SavePath should act as a closed dialog, got %v", err)
	}
}

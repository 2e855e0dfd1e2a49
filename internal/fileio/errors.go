package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind distinguishes a cancelled dialog from a failed file operation.
type Kind int

const (
	// KindDialogClosed means the user dismissed a file prompt.
	KindDialogClosed Kind = iota
	// KindIOFailed means a filesystem operation failed.
	KindIOFailed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDialogClosed:
		return "dialog closed"
	case KindIOFailed:
		return "io failed"
	default:
		return "unknown"
	}
}

// Category classifies an I/O failure. The set is closed.
type Category int

const (
	// CategoryOther covers every failure not listed below.
	CategoryOther Category = iota
	// CategoryNotFound means the file or its directory does not exist.
	CategoryNotFound
	// CategoryPermissionDenied means the OS refused access.
	CategoryPermissionDenied
	// CategoryInvalidData means the file is not valid UTF-8 text.
	CategoryInvalidData
	// CategoryIsDirectory means the path names a directory.
	CategoryIsDirectory
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not found"
	case CategoryPermissionDenied:
		return "permission denied"
	case CategoryInvalidData:
		return "invalid data"
	case CategoryIsDirectory:
		return "is a directory"
	default:
		return "other"
	}
}

// Error is the result of a failed pick, load or save.
type Error struct {
	Kind     Kind
	Category Category // meaningful only for KindIOFailed
	Op       string   // "open", "load" or "save"
	Path     string
	Err      error
}

// Sentinels for errors.Is. They match any *Error with the same kind and,
// for I/O failures, the same category.
var (
	ErrDialogClosed     = &Error{Kind: KindDialogClosed}
	ErrNotFound         = &Error{Kind: KindIOFailed, Category: CategoryNotFound}
	ErrPermissionDenied = &Error{Kind: KindIOFailed, Category: CategoryPermissionDenied}
	ErrInvalidData      = &Error{Kind: KindIOFailed, Category: CategoryInvalidData}
	ErrIsDirectory      = &Error{Kind: KindIOFailed, Category: CategoryIsDirectory}
	ErrOther            = &Error{Kind: KindIOFailed, Category: CategoryOther}
)

// errInvalidUTF8 is the cause recorded for CategoryInvalidData.
var errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindDialogClosed {
		if e.Op != "" {
			return e.Op + ": dialog closed"
		}
		return "dialog closed"
	}

	msg := e.Category.String()
	if e.Op != "" && e.Path != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	} else if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil && e.Category == CategoryOther {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinels by kind and category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return e.Kind == KindDialogClosed || e.Category == t.Category
}

// IsDialogClosed reports whether err is a cancelled prompt.
func IsDialogClosed(err error) bool {
	return errors.Is(err, ErrDialogClosed)
}

// CategoryOf returns the I/O category of err. ok is false when err is not
// an I/O failure from this package.
func CategoryOf(err error) (cat Category, ok bool) {
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindIOFailed {
		return CategoryOther, false
	}
	return fe.Category, true
}

// AsError returns the *Error in err's chain. Any other error is classified
// as an I/O failure of op. AsError(op, nil) is nil.
func AsError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return ioFailed(op, "", err)
}

// dialogClosed builds the error for a cancelled prompt.
func dialogClosed(op string) *Error {
	return &Error{Kind: KindDialogClosed, Op: op}
}

// ioFailed classifies err into the closed category set.
func ioFailed(op, path string, err error) *Error {
	return &Error{
		Kind:     KindIOFailed,
		Category: classify(err),
		Op:       op,
		Path:     path,
		Err:      err,
	}
}

func classify(err error) Category {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return CategoryNotFound
	case errors.Is(err, fs.ErrPermission):
		return CategoryPermissionDenied
	case errors.Is(err, syscall.EISDIR):
		return CategoryIsDirectory
	case errors.Is(err, errInvalidUTF8):
		return CategoryInvalidData
	default:
		return CategoryOther
	}
}

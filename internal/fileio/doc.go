// Package fileio coordinates the session's file operations: prompting the
// user for a path, reading a document as text and writing it back.
//
// Prompting and loading are separate steps. A Picker supplies paths (the
// terminal UI implements it with interactive dialogs, tests substitute a
// scripted one) and the Coordinator performs the I/O through a vfs.VFS.
//
// # Errors
//
// Every failure is an *Error of one of two kinds:
//
//   - KindDialogClosed: the user dismissed the prompt; nothing happened
//   - KindIOFailed: the filesystem operation failed, with a Category from a
//     closed set (not found, permission denied, invalid data, is a
//     directory, other)
//
// Callers match with errors.Is against ErrDialogClosed, ErrNotFound,
// ErrPermissionDenied, ErrInvalidData and ErrIsDirectory, or use
// CategoryOf. The raw OS error remains available through Unwrap.
package fileio

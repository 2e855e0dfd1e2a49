// Package vfs is the file system seam used by document loads and saves.
//
// OSFS talks to the operating system. MemFS keeps files in memory with
// deterministic permission bits and injectable faults, so the failure
// categories a save or load can hit are reproducible in tests.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the set of file operations a document session performs.
type VFS interface {
	// ReadFile reads the whole file.
	ReadFile(name string) ([]byte, error)

	// Stat describes name without reading it.
	Stat(name string) (FileInfo, error)

	// WriteFile writes data to name, creating or truncating it.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Remove deletes a file or empty directory.
	Remove(name string) error

	// Rename moves oldName to newName, replacing a file already there.
	Rename(oldName, newName string) error

	// Abs resolves name against the working directory and cleans it.
	Abs(name string) (string, error)

	// EvalSymlinks returns name with every symbolic link resolved. The
	// path must exist.
	EvalSymlinks(name string) (string, error)

	Join(elem ...string) string
	Dir(name string) string
	Base(name string) string
}

// FileInfo is what Stat reports about a path.
type FileInfo struct {
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// Name returns the last element of Path.
func (fi FileInfo) Name() string {
	for i := len(fi.Path) - 1; i >= 0; i-- {
		if fi.Path[i] == '/' {
			return fi.Path[i+1:]
		}
	}
	return fi.Path
}

// IsDir reports whether the path is a directory.
func (fi FileInfo) IsDir() bool { return fi.Mode.IsDir() }

// Writable reports whether the owner write bit is set.
func (fi FileInfo) Writable() bool { return fi.Mode.Perm()&0o200 != 0 }

func infoOf(name string, info fs.FileInfo) FileInfo {
	return FileInfo{
		Path:    name,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}
}

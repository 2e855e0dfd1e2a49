package vfs

import (
	"fmt"
	"io/fs"

	"github.com/google/uuid"
)

// WriteFileAtomic replaces the file at path with data.
//
// The data is written to a temporary file in the same directory and renamed
// over the destination, so readers observe either the old or the new content
// and never a partial write. An existing destination keeps its permission
// bits; a new file is created with perm. A symbolic link is followed and its
// target replaced, leaving the link in place.
func WriteFileAtomic(fsys VFS, path string, data []byte, perm fs.FileMode) error {
	if target, err := fsys.EvalSymlinks(path); err == nil {
		path = target
	}
	if info, err := fsys.Stat(path); err == nil {
		if info.IsDir() {
			return &fs.PathError{Op: "write", Path: path, Err: errIsDir}
		}
		// Renaming over a read-only file would succeed; refuse like a plain write.
		if !info.Writable() {
			return &fs.PathError{Op: "write", Path: path, Err: fs.ErrPermission}
		}
		perm = info.Mode.Perm()
	}

	tmp := fsys.Join(fsys.Dir(path), fmt.Sprintf(".%s.%s.tmp", fsys.Base(path), uuid.NewString()))

	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		// The temporary file may exist if the write failed midway
		_ = fsys.Remove(tmp)
		return err
	}

	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

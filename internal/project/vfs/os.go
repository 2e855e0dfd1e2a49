package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements VFS on the operating system's file system.
type OSFS struct{}

var _ VFS = (*OSFS)(nil)

// NewOSFS returns the OS file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

func (*OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (*OSFS) Stat(name string) (FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return FileInfo{}, err
	}
	return infoOf(name, info), nil
}

// WriteFile flushes data to stable storage before closing the file, so a
// save reported as done survives a crash.
func (*OSFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (*OSFS) Remove(name string) error {
	return os.Remove(name)
}

func (*OSFS) Rename(oldName, newName string) error {
	return os.Rename(oldName, newName)
}

func (*OSFS) Abs(name string) (string, error) {
	return filepath.Abs(name)
}

func (*OSFS) EvalSymlinks(name string) (string, error) {
	return filepath.EvalSymlinks(name)
}

func (*OSFS) Join(elem ...string) string { return filepath.Join(elem...) }
func (*OSFS) Dir(name string) string     { return filepath.Dir(name) }
func (*OSFS) Base(name string) string    { return filepath.Base(name) }

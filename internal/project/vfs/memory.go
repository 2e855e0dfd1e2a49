package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Standard error values for MemFS operations.
// These align with POSIX errors for consistency with OSFS.
var (
	errIsDir    = syscall.EISDIR
	errNotDir   = syscall.ENOTDIR
	errNotEmpty = syscall.ENOTEMPTY
)

// MemFS implements VFS using an in-memory file system.
// It is used by tests: permission bits are honored for the owner, and
// failures can be injected per operation and path prefix.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu     sync.RWMutex
	files  map[string]*memFile
	dirs   map[string]fs.FileMode
	faults []fault
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

type fault struct {
	op     string
	prefix string
	err    error
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]fs.FileMode{"/": 0755},
	}
}

// Ensure MemFS implements VFS.
var _ VFS = (*MemFS)(nil)

// InjectError makes every later op ("read", "stat", "write", "rename",
// "remove") on a path starting with prefix fail with err.
func (m *MemFS) InjectError(op, prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, fault{op: op, prefix: m.cleanPath(prefix), err: err})
}

// ClearErrors removes all injected errors.
func (m *MemFS) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = nil
}

// faultLocked returns the injected error for op on p, if any.
func (m *MemFS) faultLocked(op, p string) error {
	for _, f := range m.faults {
		if f.op == op && strings.HasPrefix(p, f.prefix) {
			return &fs.PathError{Op: op, Path: p, Err: f.err}
		}
	}
	return nil
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	if err := m.faultLocked("read", filePath); err != nil {
		return nil, err
	}

	f, ok := m.files[filePath]
	if !ok {
		if _, isDir := m.dirs[filePath]; isDir {
			return nil, &fs.PathError{Op: "read", Path: filePath, Err: errIsDir}
		}
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}
	if f.mode&0400 == 0 {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrPermission}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	if err := m.faultLocked("stat", filePath); err != nil {
		return FileInfo{}, err
	}

	if f, ok := m.files[filePath]; ok {
		return FileInfo{Path: filePath, Size: int64(len(f.content)), Mode: f.mode, ModTime: f.modTime}, nil
	}

	if mode, ok := m.dirs[filePath]; ok {
		return FileInfo{Path: filePath, Mode: fs.ModeDir | mode}, nil
	}

	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// WriteFile writes data to a file, creating or truncating it.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if err := m.faultLocked("write", filePath); err != nil {
		return err
	}

	if _, isDir := m.dirs[filePath]; isDir {
		return &fs.PathError{Op: "write", Path: filePath, Err: errIsDir}
	}

	dir := path.Dir(filePath)
	dirMode, ok := m.dirs[dir]
	if !ok {
		if _, isFile := m.files[dir]; isFile {
			return &fs.PathError{Op: "write", Path: filePath, Err: errNotDir}
		}
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrNotExist}
	}

	existing, exists := m.files[filePath]
	switch {
	case exists && existing.mode&0200 == 0:
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrPermission}
	case !exists && dirMode&0200 == 0:
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrPermission}
	}

	mode := perm
	if exists {
		mode = existing.mode
	}

	// Make a copy of the data
	content := make([]byte, len(data))
	copy(content, data)

	m.files[filePath] = &memFile{
		content: content,
		mode:    mode,
		modTime: time.Now(),
	}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(dirPath string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath = m.cleanPath(dirPath)

	parts := strings.Split(strings.Trim(dirPath, "/"), "/")
	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		current += "/" + part
		if _, ok := m.files[current]; ok {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errNotDir}
		}
		if _, ok := m.dirs[current]; !ok {
			m.dirs[current] = perm.Perm()
		}
	}

	return nil
}

// Chmod changes the permission bits of a file or directory.
func (m *MemFS) Chmod(filePath string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if f, ok := m.files[filePath]; ok {
		f.mode = mode.Perm()
		return nil
	}
	if _, ok := m.dirs[filePath]; ok {
		m.dirs[filePath] = mode.Perm()
		return nil
	}
	return &fs.PathError{Op: "chmod", Path: filePath, Err: fs.ErrNotExist}
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if err := m.faultLocked("remove", filePath); err != nil {
		return err
	}

	if _, ok := m.files[filePath]; ok {
		delete(m.files, filePath)
		return nil
	}

	if _, ok := m.dirs[filePath]; !ok {
		return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
	}

	prefix := filePath
	if prefix != "/" {
		prefix += "/"
	}
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}
	for d := range m.dirs {
		if d != filePath && strings.HasPrefix(d, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}

	delete(m.dirs, filePath)
	return nil
}

// Rename moves a file, replacing any file already at newPath.
func (m *MemFS) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath = m.cleanPath(oldPath)
	newPath = m.cleanPath(newPath)
	if err := m.faultLocked("rename", newPath); err != nil {
		return err
	}

	f, ok := m.files[oldPath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	if _, isDir := m.dirs[newPath]; isDir {
		return &fs.PathError{Op: "rename", Path: newPath, Err: errIsDir}
	}

	dirMode, ok := m.dirs[path.Dir(newPath)]
	if !ok {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrNotExist}
	}
	if dirMode&0200 == 0 {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrPermission}
	}

	m.files[newPath] = f
	delete(m.files, oldPath)
	return nil
}

// Abs returns the absolute path (already absolute in MemFS).
func (m *MemFS) Abs(filePath string) (string, error) {
	return m.cleanPath(filePath), nil
}

// EvalSymlinks cleans the path. MemFS has no links.
func (m *MemFS) EvalSymlinks(filePath string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	_, isFile := m.files[filePath]
	_, isDir := m.dirs[filePath]
	if !isFile && !isDir {
		return "", &fs.PathError{Op: "evalsymlinks", Path: filePath, Err: fs.ErrNotExist}
	}
	return filePath, nil
}

// Join joins path elements.
func (m *MemFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// Dir returns the directory portion of a path.
func (m *MemFS) Dir(filePath string) string {
	return path.Dir(m.cleanPath(filePath))
}

// Base returns the last element of a path.
func (m *MemFS) Base(filePath string) string {
	return path.Base(filePath)
}

// cleanPath normalizes a path.
func (m *MemFS) cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// AddFile is a convenience method for adding files during setup.
func (m *MemFS) AddFile(filePath string, content string) error {
	dir := path.Dir(m.cleanPath(filePath))
	if dir != "/" {
		if err := m.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return m.WriteFile(filePath, []byte(content), 0644)
}

// Files returns all file paths in the file system.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for f := range m.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths use forward slashes; parent directories are created implicitly.
type MemoryFileSystem struct {
	entries map[string]*memoryEntry
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{entries: make(map[string]*memoryEntry)}
}

func clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds a file, creating its parent directories.
func (m *MemoryFileSystem) AddFile(p string, content string) {
	p = clean(p)
	m.AddDir(path.Dir(p))
	m.entries[p] = &memoryEntry{
		content: []byte(content),
		info: &memoryFileInfo{
			name:    path.Base(p),
			size:    int64(len(content)),
			mode:    0o644,
			modTime: time.Now(),
		},
	}
}

// AddDir adds a directory and its parents.
func (m *MemoryFileSystem) AddDir(p string) {
	p = clean(p)
	for {
		if _, ok := m.entries[p]; !ok {
			m.entries[p] = &memoryEntry{info: &memoryFileInfo{
				name:    path.Base(p),
				mode:    0o755 | fs.ModeDir,
				modTime: time.Now(),
			}}
		}
		parent := path.Dir(p)
		if parent == p {
			return
		}
		p = parent
	}
}

func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	e, ok := m.entries[clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if e.info.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", p)
	}
	return append([]byte(nil), e.content...), nil
}

func (m *MemoryFileSystem) ReadDir(p string) ([]FileInfo, error) {
	dir := clean(p)
	e, ok := m.entries[dir]
	if !ok {
		return nil, fmt.Errorf("failed to read directory: %w", &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist})
	}
	if !e.info.IsDir() {
		return nil, fmt.Errorf("failed to read directory: %s is not a directory", p)
	}

	var result []FileInfo
	for name, entry := range m.entries {
		if name == dir || path.Dir(name) != dir {
			continue
		}
		result = append(result, entry.info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	e, ok := m.entries[clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return e.info, nil
}

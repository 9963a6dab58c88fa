package fsops

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"nusacloud/localstacker/internal/domain"
)

// MemFS is an in-memory FileSystem for testing.
type MemFS struct {
	files map[string][]byte
	links map[string]string
	dirs  map[string]bool

	// FailWrites, when set, makes WriteFile and Copy fail with ErrIO.
	FailWrites bool
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		links: make(map[string]string),
		dirs:  make(map[string]bool),
	}
}

func (m *MemFS) MkdirAll(path string) error {
	for p := filepath.Clean(path); p != "/" && p != "."; p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	path = filepath.Clean(path)
	if target, ok := m.links[path]; ok {
		path = target
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIO, path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemFS) WriteFile(path string, data []byte, perm uint32) error {
	if m.FailWrites {
		return fmt.Errorf("%w: write %s: simulated failure", domain.ErrIO, path)
	}
	m.files[filepath.Clean(path)] = append([]byte(nil), data...)
	return nil
}

func (m *MemFS) Copy(src, dst string, perm uint32) error {
	data, err := m.ReadFile(src)
	if err != nil {
		return err
	}
	return m.WriteFile(dst, data, perm)
}

func (m *MemFS) Remove(path string) error {
	path = filepath.Clean(path)
	delete(m.files, path)
	delete(m.links, path)
	return nil
}

func (m *MemFS) Symlink(target, link string) error {
	m.links[filepath.Clean(link)] = filepath.Clean(target)
	return nil
}

func (m *MemFS) Exists(path string) bool {
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return true
	}
	if _, ok := m.links[path]; ok {
		return true
	}
	return m.dirs[path]
}

// Put stores a file directly. Intended for test setup.
func (m *MemFS) Put(path string, data string) {
	m.files[filepath.Clean(path)] = []byte(data)
}

// LinkTarget returns the target of a symlink and whether it exists.
func (m *MemFS) LinkTarget(link string) (string, bool) {
	target, ok := m.links[filepath.Clean(link)]
	return target, ok
}

// Paths returns every file and link path, sorted.
func (m *MemFS) Paths() []string {
	paths := make([]string, 0, len(m.files)+len(m.links))
	for p := range m.files {
		paths = append(paths, p)
	}
	for p := range m.links {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

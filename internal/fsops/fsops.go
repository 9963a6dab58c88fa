// Package fsops implements domain.FileSystem for the real filesystem, a
// dry-run wrapper, and an in-memory double for tests.
package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"nusacloud/localstacker/internal/domain"
)

// OS is the production FileSystem.
type OS struct{}

// NewOS returns the real filesystem.
func NewOS() OS { return OS{} }

func (OS) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

func (OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIO, path, err)
	}
	return data, nil
}

// WriteFile writes data to a temporary file in the destination directory
// and renames it over path, so readers never see a partial file.
func (OS) WriteFile(path string, data []byte, perm uint32) error {
	if err := WriteAtomic(path, data, fs.FileMode(perm)); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

func (o OS) Copy(src, dst string, perm uint32) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: copy %s: %w", domain.ErrIO, src, err)
	}
	if err := WriteAtomic(dst, data, fs.FileMode(perm)); err != nil {
		return fmt.Errorf("%w: copy %s -> %s: %w", domain.ErrIO, src, dst, err)
	}
	return nil
}

func (OS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrIO, path, err)
	}
	return nil
}

func (OS) Symlink(target, link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: replace link %s: %w", domain.ErrIO, link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("%w: link %s -> %s: %w", domain.ErrIO, link, target, err)
	}
	return nil
}

// Exists reports whether path is present. Symlinks count as present even
// when their target is missing.
func (OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// WriteAtomic writes data to a temp file next to path, syncs it, and renames
// it into place. The parent directory must exist.
func WriteAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

package fsops

import (
	"log/slog"

	"nusacloud/localstacker/internal/domain"
)

// DryRun wraps a FileSystem so that reads pass through and every mutation
// is logged and skipped.
type DryRun struct {
	inner  domain.FileSystem
	logger *slog.Logger
}

// NewDryRun returns a dry-run view of inner.
func NewDryRun(inner domain.FileSystem, logger *slog.Logger) *DryRun {
	return &DryRun{inner: inner, logger: logger}
}

func (d *DryRun) MkdirAll(path string) error {
	d.logger.Info("Would create directory", "path", path, "dry_run", true)
	return nil
}

func (d *DryRun) ReadFile(path string) ([]byte, error) {
	return d.inner.ReadFile(path)
}

func (d *DryRun) WriteFile(path string, data []byte, perm uint32) error {
	d.logger.Info("Would write file", "path", path, "bytes", len(data), "dry_run", true)
	return nil
}

func (d *DryRun) Copy(src, dst string, perm uint32) error {
	d.logger.Info("Would copy file", "from", src, "to", dst, "dry_run", true)
	return nil
}

func (d *DryRun) Remove(path string) error {
	d.logger.Info("Would remove file", "path", path, "dry_run", true)
	return nil
}

func (d *DryRun) Symlink(target, link string) error {
	d.logger.Info("Would link file", "link", link, "target", target, "dry_run", true)
	return nil
}

func (d *DryRun) Exists(path string) bool {
	return d.inner.Exists(path)
}

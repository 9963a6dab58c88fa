// Package nginx implements domain.ProxyConfigurator for nginx's
// sites-available / sites-enabled layout.
package nginx

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/runner"
)

// Paths locates the directories nginx reads.
type Paths struct {
	SSLDir       string
	AvailableDir string
	EnabledDir   string
}

// DefaultPaths is the Debian layout.
var DefaultPaths = Paths{
	SSLDir:       "/etc/nginx/ssl",
	AvailableDir: "/etc/nginx/sites-available",
	EnabledDir:   "/etc/nginx/sites-enabled",
}

// Configurator is the production ProxyConfigurator.
type Configurator struct {
	runner runner.Runner
	fs     domain.FileSystem
	logger *slog.Logger
	binary string
	paths  Paths
}

// New returns a Configurator. An empty binary defaults to "nginx".
func New(r runner.Runner, fs domain.FileSystem, logger *slog.Logger, binary string, paths Paths) *Configurator {
	if binary == "" {
		binary = "nginx"
	}
	return &Configurator{runner: r, fs: fs, logger: logger, binary: binary, paths: paths}
}

func (c *Configurator) AvailablePath(name string) string {
	return filepath.Join(c.paths.AvailableDir, name)
}

func (c *Configurator) EnabledPath(name string) string {
	return filepath.Join(c.paths.EnabledDir, name)
}

func (c *Configurator) Render(name string, port int, templatePath string) (string, error) {
	text := DefaultTemplate
	if templatePath != "" {
		data, err := c.fs.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("%w: read template %s: %w", domain.ErrTemplate, templatePath, err)
		}
		text = string(data)
	}

	cert, key := domain.CertificatePaths(c.paths.SSLDir, name)
	return Substitute(text, Values{
		Domain:   name,
		Port:     strconv.Itoa(port),
		CertPath: cert,
		KeyPath:  key,
	}), nil
}

func (c *Configurator) Write(name, text string) error {
	if err := c.fs.MkdirAll(c.paths.AvailableDir); err != nil {
		return err
	}
	path := c.AvailablePath(name)
	c.logger.Debug("Writing nginx config", "path", path)
	return c.fs.WriteFile(path, []byte(text), 0o644)
}

func (c *Configurator) Enable(name string) error {
	if err := c.fs.MkdirAll(c.paths.EnabledDir); err != nil {
		return err
	}
	return c.fs.Symlink(c.AvailablePath(name), c.EnabledPath(name))
}

func (c *Configurator) Disable(name string) error {
	return c.fs.Remove(c.EnabledPath(name))
}

// Validate runs "nginx -t". A rejected configuration is reported as
// ErrConfigInvalid; a missing binary stays ErrExternalTool.
func (c *Configurator) Validate(ctx context.Context) error {
	res, err := c.runner.Run(ctx, runner.Command{
		Name:        c.binary,
		Args:        []string{"-t"},
		Description: "test nginx configuration",
	})
	if err != nil {
		if res == nil {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}
	return nil
}

func (c *Configurator) Reload(ctx context.Context) error {
	_, err := c.runner.Run(ctx, runner.Command{
		Name:        c.binary,
		Args:        []string{"-s", "reload"},
		Description: "reload nginx",
	})
	return err
}

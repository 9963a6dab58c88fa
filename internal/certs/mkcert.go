// Package certs implements domain.CertificateAuthority on top of mkcert.
package certs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/runner"
)

// caRootEnv is the variable mkcert reads to locate its CA.
const caRootEnv = "CAROOT"

// packageManager describes how to install mkcert with one package manager.
type packageManager struct {
	name  string
	steps [][]string
}

// packageManagers is the detection order used by InstallTool.
var packageManagers = []packageManager{
	{name: "apt-get", steps: [][]string{{"update"}, {"install", "-y", "mkcert"}}},
	{name: "dnf", steps: [][]string{{"install", "-y", "mkcert"}}},
	{name: "yum", steps: [][]string{{"install", "-y", "mkcert"}}},
	{name: "brew", steps: [][]string{{"install", "mkcert"}}},
}

// Mkcert is the production CertificateAuthority. Certificates are issued
// into StagingDir, from where the orchestrator moves them into place.
type Mkcert struct {
	runner     runner.Runner
	fs         domain.FileSystem
	logger     *slog.Logger
	binary     string
	stagingDir string
}

// Options configures a Mkcert gateway.
type Options struct {
	// Binary is the mkcert executable name or path. Defaults to "mkcert".
	Binary     string
	StagingDir string
}

// New returns a Mkcert gateway.
func New(r runner.Runner, fs domain.FileSystem, logger *slog.Logger, opts Options) *Mkcert {
	binary := opts.Binary
	if binary == "" {
		binary = "mkcert"
	}
	return &Mkcert{
		runner:     r,
		fs:         fs,
		logger:     logger,
		binary:     binary,
		stagingDir: opts.StagingDir,
	}
}

func (m *Mkcert) IsToolAvailable() bool {
	return m.runner.LookPath(m.binary)
}

func (m *Mkcert) InstallTool(ctx context.Context) error {
	for _, pm := range packageManagers {
		if !m.runner.LookPath(pm.name) {
			continue
		}
		m.logger.Info("Installing mkcert", "package_manager", pm.name)
		for _, args := range pm.steps {
			cmd := runner.Command{Name: pm.name, Args: args, Description: "install mkcert"}
			if _, err := m.runner.Run(ctx, cmd); err != nil {
				m.logger.Debug("Package manager step failed", "command", cmd.Line(), "error", err)
				return err
			}
		}
		return nil
	}

	names := make([]string, len(packageManagers))
	for i, pm := range packageManagers {
		names[i] = pm.name
	}
	return fmt.Errorf("%w: no supported package manager found (tried %v), install mkcert manually", domain.ErrUnsupportedPlatform, names)
}

func (m *Mkcert) InstallLocalCA(ctx context.Context, caRoot string) error {
	m.logger.Debug("Installing local CA", "caroot", caRoot)
	_, err := m.runner.Run(ctx, runner.Command{
		Name:        m.binary,
		Args:        []string{"-install"},
		Env:         caRootOverride(caRoot),
		Description: "install local CA",
	})
	return err
}

func (m *Mkcert) IssueCertificate(ctx context.Context, name, caRoot string) error {
	if err := m.fs.MkdirAll(m.stagingDir); err != nil {
		return err
	}

	m.logger.Debug("Issuing certificate", "domain", name, "caroot", caRoot)
	_, err := m.runner.Run(ctx, runner.Command{
		Name:        m.binary,
		Args:        []string{name},
		Env:         caRootOverride(caRoot),
		Dir:         m.stagingDir,
		Description: "generate certificate",
	})
	return err
}

// IssuedPaths returns mkcert's default output names inside the staging
// directory.
func (m *Mkcert) IssuedPaths(name string) (certPath, keyPath string) {
	return filepath.Join(m.stagingDir, name+".pem"), filepath.Join(m.stagingDir, name+"-key.pem")
}

func caRootOverride(caRoot string) map[string]string {
	if caRoot == "" {
		return nil
	}
	return map[string]string{caRootEnv: caRoot}
}

// Package provision sequences the multi-step workflows that bring a domain's
// certificate, proxy configuration and registry record into existence and
// tear them down again.
//
// Every workflow fails fast: the first failing step aborts the rest and no
// rollback is attempted. Each step is idempotent or overwrite-based, so a
// failed run can simply be retried. The registry record is written last on
// provision and removed last on deprovision, so it never points at
// half-built or half-removed state.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/registry"
	"nusacloud/localstacker/internal/util"
)

// Reporter receives user-facing progress messages.
type Reporter interface {
	Success(msg string)
	Info(msg string)
	Warning(msg string)
}

type nopReporter struct{}

func (nopReporter) Success(string) {}
func (nopReporter) Info(string)    {}
func (nopReporter) Warning(string) {}

// Deps are the capabilities a Service coordinates.
type Deps struct {
	CA       domain.CertificateAuthority
	Proxy    domain.ProxyConfigurator
	Services domain.ServiceController
	FS       domain.FileSystem
	Store    registry.Store
	Auth     domain.Authorizer

	Logger   *slog.Logger
	Reporter Reporter

	// Now defaults to time.Now.
	Now func() time.Time
}

// Settings holds the locations the workflows write to.
type Settings struct {
	// SSLDir receives the managed certificate and key files.
	SSLDir string

	// CARoot is handed to the certificate tool so it signs with the
	// invoking user's CA even under sudo. Empty uses the tool default.
	CARoot string
}

// Service runs provisioning workflows.
type Service struct {
	deps     Deps
	settings Settings
}

// NewService creates a provisioning service.
func NewService(deps Deps, settings Settings) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Reporter == nil {
		deps.Reporter = nopReporter{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps, settings: settings}
}

// requireElevated fails with ErrPermission unless the process is privileged.
func (s *Service) requireElevated() error {
	if !s.deps.Auth.IsElevated() {
		return fmt.Errorf("%w: this command requires root privileges, run with sudo", domain.ErrPermission)
	}
	return nil
}

// lookup returns the registered record for name or ErrNotFound.
func (s *Service) lookup(name string) (domain.DomainRecord, error) {
	rec, ok := s.deps.Store.Get(name)
	if !ok {
		return domain.DomainRecord{}, fmt.Errorf("%w: domain %q", domain.ErrNotFound, name)
	}
	return rec, nil
}

// activate validates the aggregate web server configuration and reloads it.
// Reload is never attempted on a configuration that failed validation.
func (s *Service) activate(ctx context.Context) error {
	if err := s.deps.Proxy.Validate(ctx); err != nil {
		return err
	}
	s.deps.Reporter.Success("Nginx configuration test passed")

	if err := s.deps.Proxy.Reload(ctx); err != nil {
		return err
	}
	s.deps.Reporter.Success("Nginx reloaded")
	return nil
}

// InstallCertTool installs the certificate tool and the local CA. When the
// tool is already present and force is false nothing is done and installed
// is false.
func (s *Service) InstallCertTool(ctx context.Context, force bool) (installed bool, err error) {
	if err := s.requireElevated(); err != nil {
		return false, err
	}

	if s.deps.CA.IsToolAvailable() && !force {
		s.deps.Reporter.Info("mkcert is already installed (use --force to reinstall)")
		return false, nil
	}

	if err := s.deps.CA.InstallTool(ctx); err != nil {
		return false, err
	}
	s.deps.Reporter.Success("mkcert installed")

	if err := s.deps.CA.InstallLocalCA(ctx, s.settings.CARoot); err != nil {
		return false, err
	}
	s.deps.Reporter.Success("Local CA installed")
	return true, nil
}

// validateInput checks the domain and port without side effects.
func (s *Service) validateInput(name string, port int) error {
	if err := util.ValidateDomain(name); err != nil {
		return err
	}
	return util.ValidatePort(port, s.deps.Auth.IsElevated())
}

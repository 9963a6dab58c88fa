package provision

import (
	"context"
	"fmt"

	"nusacloud/localstacker/internal/domain"
)

// ProvisionRequest describes a domain to provision.
type ProvisionRequest struct {
	Domain string
	Port   int

	// Service is an optional systemd unit restarted after activation.
	Service string

	// TemplatePath replaces the built-in proxy template when set.
	TemplatePath string

	// NoOverwrite rejects domains that are already registered.
	NoOverwrite bool
}

// ProvisionResult reports what Provision did.
type ProvisionResult struct {
	Record  domain.DomainRecord
	Outcome domain.UpsertResult

	// ServiceRestarted is true when the requested service was found and
	// restarted.
	ServiceRestarted bool
}

// Provision issues a certificate for the domain, writes and enables its
// virtual host, reloads the web server, optionally restarts the backend
// service and finally records the domain in the registry.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionResult, error) {
	if err := s.requireElevated(); err != nil {
		return nil, err
	}
	if err := s.validateInput(req.Domain, req.Port); err != nil {
		return nil, err
	}

	existing, exists := s.deps.Store.Get(req.Domain)
	if exists && req.NoOverwrite {
		return nil, fmt.Errorf("%w: domain %q is already configured", domain.ErrAlreadyExists, req.Domain)
	}

	log := s.deps.Logger.With("domain", req.Domain, "port", req.Port)
	log.Debug("Provisioning domain")

	if err := s.ensureCA(ctx); err != nil {
		return nil, err
	}

	if err := s.deps.CA.IssueCertificate(ctx, req.Domain, s.settings.CARoot); err != nil {
		return nil, err
	}
	s.deps.Reporter.Success(fmt.Sprintf("Certificate generated for %s", req.Domain))

	certPath, keyPath, err := s.installCertificate(req.Domain)
	if err != nil {
		return nil, err
	}
	s.deps.Reporter.Success("SSL certificates installed")

	text, err := s.deps.Proxy.Render(req.Domain, req.Port, req.TemplatePath)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Proxy.Write(req.Domain, text); err != nil {
		return nil, err
	}
	s.deps.Reporter.Success("Nginx configuration created")

	if err := s.deps.Proxy.Enable(req.Domain); err != nil {
		return nil, err
	}
	s.deps.Reporter.Success("Site enabled")

	if err := s.activate(ctx); err != nil {
		return nil, err
	}

	restarted, err := s.restartService(ctx, req.Service)
	if err != nil {
		return nil, err
	}

	rec := domain.DomainRecord{
		Domain:          req.Domain,
		Port:            req.Port,
		Service:         req.Service,
		CertificatePath: certPath,
		KeyPath:         keyPath,
		ProxyConfigPath: s.deps.Proxy.AvailablePath(req.Domain),
		CreatedAt:       s.deps.Now().UTC(),
		Enabled:         true,
	}
	if exists && !existing.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	}

	outcome, err := s.commit(rec, req.NoOverwrite)
	if err != nil {
		return nil, err
	}
	log.Debug("Domain provisioned", "result", outcome.String())

	return &ProvisionResult{Record: rec, Outcome: outcome, ServiceRestarted: restarted}, nil
}

// commit records rec. With noOverwrite the duplicate check is repeated
// under the registry lock, so a concurrent setup of the same domain cannot
// be replaced silently.
func (s *Service) commit(rec domain.DomainRecord, noOverwrite bool) (domain.UpsertResult, error) {
	if !noOverwrite {
		return s.deps.Store.Upsert(rec)
	}
	if err := s.deps.Store.Insert(rec); err != nil {
		return 0, err
	}
	return domain.Created, nil
}

// ensureCA installs the certificate tool when missing and then the local CA.
func (s *Service) ensureCA(ctx context.Context) error {
	if !s.deps.CA.IsToolAvailable() {
		s.deps.Reporter.Warning("mkcert not found, attempting to install...")
		if err := s.deps.CA.InstallTool(ctx); err != nil {
			return err
		}
	}
	s.deps.Reporter.Success("mkcert is installed")

	if err := s.deps.CA.InstallLocalCA(ctx, s.settings.CARoot); err != nil {
		return err
	}
	s.deps.Reporter.Success("Local CA installed")
	return nil
}

// installCertificate moves the freshly issued files into the managed SSL
// directory. The key is readable by root only.
func (s *Service) installCertificate(name string) (certPath, keyPath string, err error) {
	if err := s.deps.FS.MkdirAll(s.settings.SSLDir); err != nil {
		return "", "", err
	}

	srcCert, srcKey := s.deps.CA.IssuedPaths(name)
	certPath, keyPath = domain.CertificatePaths(s.settings.SSLDir, name)

	if err := s.deps.FS.Copy(srcCert, certPath, 0o644); err != nil {
		return "", "", err
	}
	if err := s.deps.FS.Copy(srcKey, keyPath, 0o600); err != nil {
		return "", "", err
	}
	if err := s.deps.FS.Remove(srcCert); err != nil {
		return "", "", err
	}
	if err := s.deps.FS.Remove(srcKey); err != nil {
		return "", "", err
	}
	return certPath, keyPath, nil
}

// restartService restarts name when it exists. A failed or negative lookup
// is a warning; a failed restart of an existing service is an error.
func (s *Service) restartService(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	exists, err := s.deps.Services.Exists(ctx, name)
	if err != nil {
		s.deps.Logger.Warn("Service lookup failed", "service", name, "error", err)
		exists = false
	}
	if !exists {
		s.deps.Reporter.Warning(fmt.Sprintf("Service %s not found, skipping restart", name))
		return false, nil
	}

	s.deps.Reporter.Info(fmt.Sprintf("Restarting service %s...", name))
	if err := s.deps.Services.Restart(ctx, name); err != nil {
		return false, err
	}
	s.deps.Reporter.Success(fmt.Sprintf("Service %s restarted", name))
	return true, nil
}

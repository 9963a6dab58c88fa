package provision

import (
	"context"
	"fmt"

	"nusacloud/localstacker/internal/domain"
)

// DeprovisionRequest describes a domain to remove.
type DeprovisionRequest struct {
	Domain string

	// RemoveCertificates also deletes the certificate and key files.
	RemoveCertificates bool
}

// Deprovision disables and removes the domain's virtual host, optionally
// deletes its certificate material, reloads the web server and removes the
// registry record. An unknown domain fails with ErrNotFound before anything
// is touched.
func (s *Service) Deprovision(ctx context.Context, req DeprovisionRequest) (*domain.DomainRecord, error) {
	if err := s.requireElevated(); err != nil {
		return nil, err
	}

	rec, err := s.lookup(req.Domain)
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Debug("Removing domain", "domain", rec.Domain, "remove_certs", req.RemoveCertificates)

	if err := s.deps.Proxy.Disable(rec.Domain); err != nil {
		return nil, err
	}
	s.deps.Reporter.Success("Site disabled")

	if s.deps.FS.Exists(rec.ProxyConfigPath) {
		if err := s.deps.FS.Remove(rec.ProxyConfigPath); err != nil {
			return nil, err
		}
		s.deps.Reporter.Success("Nginx configuration removed")
	}

	if req.RemoveCertificates {
		for _, p := range []string{rec.CertificatePath, rec.KeyPath} {
			if !s.deps.FS.Exists(p) {
				continue
			}
			if err := s.deps.FS.Remove(p); err != nil {
				return nil, err
			}
		}
		s.deps.Reporter.Success("SSL certificates removed")
	} else {
		s.deps.Reporter.Info("SSL certificates kept (use --remove-certs to delete them)")
	}

	if err := s.activate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.Remove(rec.Domain); err != nil {
		return nil, err
	}
	s.deps.Reporter.Success("Configuration removed")

	return &rec, nil
}

// Enable re-activates a registered domain's virtual host.
func (s *Service) Enable(ctx context.Context, name string) (*domain.DomainRecord, error) {
	return s.toggle(ctx, name, true)
}

// Disable deactivates a registered domain's virtual host without removing
// its configuration, certificates or registry record.
func (s *Service) Disable(ctx context.Context, name string) (*domain.DomainRecord, error) {
	return s.toggle(ctx, name, false)
}

func (s *Service) toggle(ctx context.Context, name string, enable bool) (*domain.DomainRecord, error) {
	if err := s.requireElevated(); err != nil {
		return nil, err
	}

	rec, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	if enable {
		if !s.deps.FS.Exists(rec.ProxyConfigPath) {
			return nil, fmt.Errorf("%w: nginx configuration %s is missing, run setup again", domain.ErrNotFound, rec.ProxyConfigPath)
		}
		if err := s.deps.Proxy.Enable(name); err != nil {
			return nil, err
		}
		s.deps.Reporter.Success("Site enabled")
	} else {
		if err := s.deps.Proxy.Disable(name); err != nil {
			return nil, err
		}
		s.deps.Reporter.Success("Site disabled")
	}

	if err := s.activate(ctx); err != nil {
		return nil, err
	}

	rec.Enabled = enable
	if _, err := s.deps.Store.Upsert(rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

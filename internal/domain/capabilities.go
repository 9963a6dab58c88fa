package domain

import "context"

// CertificateAuthority mints locally-trusted certificates through an
// external tool (mkcert).
type CertificateAuthority interface {
	// IsToolAvailable reports whether the certificate tool is on PATH.
	IsToolAvailable() bool

	// InstallTool installs the certificate tool with the first supported
	// system package manager. It fails with ErrUnsupportedPlatform when
	// none is present.
	InstallTool(ctx context.Context) error

	// InstallLocalCA installs the local CA into the system trust stores.
	// A non-empty caRoot is passed to the tool as its CA root directory.
	InstallLocalCA(ctx context.Context, caRoot string) error

	// IssueCertificate mints a certificate for domain signed by the CA
	// found in caRoot (or the tool default when empty).
	IssueCertificate(ctx context.Context, domain, caRoot string) error

	// IssuedPaths returns where IssueCertificate leaves the certificate and
	// key for domain. The result depends on the domain name alone.
	IssuedPaths(domain string) (certPath, keyPath string)
}

// ProxyConfigurator renders, stores and activates web server virtual hosts.
type ProxyConfigurator interface {
	// Render produces the virtual host text for domain. When templatePath
	// is non-empty its contents replace the built-in template.
	Render(domain string, port int, templatePath string) (string, error)

	// Write stores text at AvailablePath(domain).
	Write(domain, text string) error

	// Enable creates the enabled reference for the domain's config.
	Enable(domain string) error

	// Disable removes the enabled reference. Disabling a site that is not
	// enabled succeeds.
	Disable(domain string) error

	// Validate runs the web server's own syntax check.
	Validate(ctx context.Context) error

	// Reload applies configuration without dropping connections. Callers
	// must Validate first.
	Reload(ctx context.Context) error

	AvailablePath(domain string) string
	EnabledPath(domain string) string
}

// ServiceController queries and restarts OS-managed services.
type ServiceController interface {
	Exists(ctx context.Context, name string) (bool, error)
	IsRunning(ctx context.Context, name string) (bool, error)
	Restart(ctx context.Context, name string) error
}

// FileSystem is the subset of filesystem operations the workflows use.
type FileSystem interface {
	MkdirAll(path string) error
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path atomically.
	WriteFile(path string, data []byte, perm uint32) error

	// Copy copies src to dst, replacing dst.
	Copy(src, dst string, perm uint32) error

	// Remove deletes path. A missing path is not an error.
	Remove(path string) error

	// Symlink points link at target, replacing an existing link.
	Symlink(target, link string) error

	Exists(path string) bool
}

// Authorizer decides whether the current process runs with administrator
// privilege.
type Authorizer interface {
	IsElevated() bool
}

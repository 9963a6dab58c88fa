package domain

import "errors"

// Sentinel errors classifying every failure a workflow can surface.
// Implementations wrap one of these together with the underlying cause so
// the CLI can report categories uniformly:
//
//	return fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, err)
var (
	// ErrValidation indicates bad user input (domain syntax, port range).
	// It is always returned before any side effect has been applied.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the domain is not present in the registry.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a create-only request for a domain that is
	// already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermission indicates the process lacks the privilege required for
	// the operation.
	ErrPermission = errors.New("permission denied")

	// ErrExternalTool indicates an external program was unavailable or
	// exited non-zero.
	ErrExternalTool = errors.New("external command failed")

	// ErrConfigInvalid indicates the web server rejected its configuration
	// during the syntax check.
	ErrConfigInvalid = errors.New("web server configuration invalid")

	// ErrIO indicates a filesystem read, write, copy or remove failure.
	ErrIO = errors.New("io error")

	// ErrConfigCorrupt indicates the registry document exists but cannot be
	// parsed.
	ErrConfigCorrupt = errors.New("registry document corrupt")

	// ErrUnsupportedPlatform indicates no supported package manager was
	// found to install the certificate tool.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrTemplate indicates a custom proxy template could not be read.
	ErrTemplate = errors.New("template error")
)

package util

import (
	"fmt"
	"regexp"
	"strings"

	"nusacloud/localstacker/internal/domain"
)

// validDomainChars matches only alphanumeric characters, hyphens, and periods.
var validDomainChars = regexp.MustCompile(`^[a-zA-Z0-9.\-]+$`)

const (
	minPort        = 1
	maxPort        = 65535
	privilegedPort = 1024
)

// ValidateDomain checks that a domain name is usable as a virtual host and
// file name:
//   - Not empty
//   - Only alphanumeric characters (a-z, A-Z, 0-9), hyphens (-), and periods (.)
//   - Does not start or end with a period
func ValidateDomain(name string) error {
	if name == "" {
		return fmt.Errorf("%w: domain cannot be empty", domain.ErrValidation)
	}

	if !validDomainChars.MatchString(name) {
		return fmt.Errorf("%w: domain %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, and periods are allowed)", domain.ErrValidation, name)
	}

	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: domain %q must not start or end with a period", domain.ErrValidation, name)
	}

	return nil
}

// ValidatePort checks that port is a usable TCP port. Ports below 1024 are
// accepted only when elevated is true.
func ValidatePort(port int, elevated bool) error {
	if port < minPort || port > maxPort {
		return fmt.Errorf("%w: port must be between %d and %d, got %d", domain.ErrValidation, minPort, maxPort, port)
	}

	if port < privilegedPort && !elevated {
		return fmt.Errorf("%w: ports below %d require root privileges, got %d", domain.ErrValidation, privilegedPort, port)
	}

	return nil
}

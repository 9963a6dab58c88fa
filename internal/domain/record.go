package domain

import (
	"path/filepath"
	"time"
)

// DomainRecord is the registry entry for one provisioned domain.
type DomainRecord struct {
	Domain string `json:"domain"`

	// Port is the local backend port the proxy forwards to.
	Port int `json:"port"`

	// Service optionally names a systemd unit restarted after activation.
	// The record does not own the service.
	Service string `json:"service,omitempty"`

	CertificatePath string `json:"ssl_cert_path"`
	KeyPath         string `json:"ssl_key_path"`
	ProxyConfigPath string `json:"nginx_config_path"`

	// CreatedAt is the time of the first successful provisioning. Updates
	// keep the original value.
	CreatedAt time.Time `json:"created_at"`

	// Enabled reports whether the virtual host is active.
	Enabled bool `json:"enabled"`
}

// UpsertResult tells a caller whether an upsert inserted or replaced a record.
type UpsertResult int

const (
	Created UpsertResult = iota + 1
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// CertificatePaths returns the managed certificate and key locations for
// name inside sslDir.
func CertificatePaths(sslDir, name string) (certPath, keyPath string) {
	return filepath.Join(sslDir, name+".pem"), filepath.Join(sslDir, name+"-key.pem")
}

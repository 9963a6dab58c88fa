package config

import (
	"fmt"
	"strings"
	"time"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "ssl-dir").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for validating and calling Save).
	Set func(cfg *Config, value string) error
}

// stringKey builds a KeySpec for a plain string field.
func stringKey(name, description string, field func(cfg *Config) *string) KeySpec {
	return KeySpec{
		Name:        name,
		Description: description,
		Get:         func(cfg *Config) string { return *field(cfg) },
		Set: func(cfg *Config, v string) error {
			*field(cfg) = v
			return nil
		},
	}
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	stringKey("registry-path", "Domain registry document",
		func(c *Config) *string { return &c.RegistryPath }),
	stringKey("ssl-dir", "Directory receiving issued certificates and keys",
		func(c *Config) *string { return &c.SSLDir }),
	stringKey("sites-available-dir", "Directory holding generated nginx configs",
		func(c *Config) *string { return &c.SitesAvailableDir }),
	stringKey("sites-enabled-dir", "Directory holding links to enabled configs",
		func(c *Config) *string { return &c.SitesEnabledDir }),
	stringKey("staging-dir", "Working directory for the certificate tool",
		func(c *Config) *string { return &c.StagingDir }),
	stringKey("audit-db", "SQLite database for the audit trail",
		func(c *Config) *string { return &c.AuditDBPath }),
	stringKey("cert-tool", "Certificate tool executable",
		func(c *Config) *string { return &c.CertTool }),
	stringKey("web-server", "Web server executable",
		func(c *Config) *string { return &c.WebServer }),
	stringKey("service-manager", "Service manager executable",
		func(c *Config) *string { return &c.ServiceManager }),
	stringKey("default-template", "Proxy template used when --template is not given",
		func(c *Config) *string { return &c.DefaultTemplate }),
	{
		Name:        "probe-timeout",
		Description: "Timeout for HTTPS reachability probes (e.g. 5s)",
		Get:         func(cfg *Config) string { return cfg.ProbeTimeout.String() },
		Set: func(cfg *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", v, err)
			}
			cfg.ProbeTimeout = d
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

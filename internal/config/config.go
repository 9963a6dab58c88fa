// Package config handles persistent settings for localstacker.
//
// Settings are stored as JSON at /etc/localstacker/config.json (override
// with LOCALSTACKER_CONFIG). Load layers, in order: built-in defaults, the
// config file, an optional .env file and LOCALSTACKER_* environment
// variables. The result is validated before use.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"nusacloud/localstacker/internal/fsops"
)

const (
	// DefaultPath is the config file location when LOCALSTACKER_CONFIG is
	// not set.
	DefaultPath = "/etc/localstacker/config.json"

	// PathEnv names the variable overriding the config file location.
	PathEnv = "LOCALSTACKER_CONFIG"

	// EnvPrefix is prepended to every field's env tag.
	EnvPrefix = "LOCALSTACKER_"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds the locations and tool names every command works with.
type Config struct {
	RegistryPath      string `json:"registry_path,omitempty" env:"REGISTRY_PATH" validate:"required,startswith=/"`
	SSLDir            string `json:"ssl_dir,omitempty" env:"SSL_DIR" validate:"required,startswith=/"`
	SitesAvailableDir string `json:"sites_available_dir,omitempty" env:"SITES_AVAILABLE_DIR" validate:"required,startswith=/"`
	SitesEnabledDir   string `json:"sites_enabled_dir,omitempty" env:"SITES_ENABLED_DIR" validate:"required,startswith=/"`

	// StagingDir is where the certificate tool writes freshly issued files.
	StagingDir  string `json:"staging_dir,omitempty" env:"STAGING_DIR" validate:"required,startswith=/"`
	AuditDBPath string `json:"audit_db_path,omitempty" env:"AUDIT_DB" validate:"required,startswith=/"`

	CertTool       string `json:"cert_tool,omitempty" env:"CERT_TOOL" validate:"required"`
	WebServer      string `json:"web_server,omitempty" env:"WEB_SERVER" validate:"required"`
	ServiceManager string `json:"service_manager,omitempty" env:"SERVICE_MANAGER" validate:"required"`

	// DefaultTemplate replaces the built-in proxy template when setup is
	// run without --template.
	DefaultTemplate string `json:"default_template,omitempty" env:"DEFAULT_TEMPLATE" validate:"omitempty,startswith=/"`

	// ProbeTimeout bounds each HTTPS reachability probe, retries included.
	ProbeTimeout time.Duration `json:"probe_timeout,omitempty" env:"PROBE_TIMEOUT" validate:"gte=100ms,lte=1m"`
}

// Defaults returns the stock configuration for a Debian-style nginx host.
func Defaults() *Config {
	return &Config{
		RegistryPath:      "/etc/localstacker/domains.json",
		SSLDir:            "/etc/nginx/ssl",
		SitesAvailableDir: "/etc/nginx/sites-available",
		SitesEnabledDir:   "/etc/nginx/sites-enabled",
		StagingDir:        "/var/lib/localstacker/staging",
		AuditDBPath:       "/var/lib/localstacker/localstacker.db",
		CertTool:          "mkcert",
		WebServer:         "nginx",
		ServiceManager:    "systemctl",
		ProbeTimeout:      5 * time.Second,
	}
}

// Path returns the absolute path to the config file.
// SetPath takes precedence over LOCALSTACKER_CONFIG, which takes precedence
// over DefaultPath.
func Path() string {
	if pathOverride != "" {
		return pathOverride
	}
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load builds the effective configuration from every source and validates
// it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg, err := loadFrom(Path())
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFrom reads the config file at path over the defaults. A missing file
// yields the defaults.
func loadFrom(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays LOCALSTACKER_* variables onto cfg. Unset variables
// leave fields untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: invalid environment: %w", err)
	}
	return nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := fsops.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// MarshalJSON writes ProbeTimeout as a duration string ("5s").
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	out := struct {
		alias
		ProbeTimeout string `json:"probe_timeout,omitempty"`
	}{alias: alias(c)}
	if c.ProbeTimeout != 0 {
		out.ProbeTimeout = c.ProbeTimeout.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts ProbeTimeout as a duration string. Fields absent
// from the document keep their current values.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	in := struct {
		*alias
		ProbeTimeout string `json:"probe_timeout,omitempty"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.ProbeTimeout != "" {
		d, err := time.ParseDuration(in.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("probe_timeout: %w", err)
		}
		c.ProbeTimeout = d
	}
	return nil
}

// LoadFrom reads the config from the given path without consulting the
// environment. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

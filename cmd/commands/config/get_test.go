package config

import (
	"strings"
	"testing"

	"nusacloud/localstacker/internal/config"
)

func TestGet_Default(t *testing.T) {
	setupTestConfig(t)

	stdout, err := execConfig(t, "get", "web-server")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "nginx" {
		t.Errorf("expected nginx, got: %q", stdout)
	}
}

func TestGet_NotSet(t *testing.T) {
	setupTestConfig(t)

	stdout, err := execConfig(t, "get", "--key", "default-template")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "not set") {
		t.Errorf("expected 'not set', got: %s", stdout)
	}
}

func TestGet_SavedValue(t *testing.T) {
	path := setupTestConfig(t)

	cfg := config.Defaults()
	cfg.SSLDir = "/srv/certs"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, err := execConfig(t, "get", "ssl-dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "/srv/certs" {
		t.Errorf("expected /srv/certs, got: %q", stdout)
	}
}

func TestGet_EnvironmentOverride(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("LOCALSTACKER_SSL_DIR", "/opt/ssl")

	stdout, err := execConfig(t, "get", "ssl-dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "/opt/ssl" {
		t.Errorf("expected env override, got: %q", stdout)
	}
}

func TestGet_ListsAll(t *testing.T) {
	setupTestConfig(t)

	stdout, err := execConfig(t, "get")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range config.KeyNames() {
		if !strings.Contains(stdout, name+":") {
			t.Errorf("expected %s in listing, got:\n%s", name, stdout)
		}
	}
}

func TestGet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, err := execConfig(t, "get", "bogus-key")
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %v", err)
	}
}

package util

import (
	"errors"
	"strings"
	"testing"

	"nusacloud/localstacker/internal/domain"
)

func TestValidateDomain_Valid(t *testing.T) {
	valid := []string{
		"test.local",
		"app.local",
		"a",
		"localhost",
		"my-app.dev.local",
		"UPPERCASE.LOCAL",
		"123.numeric",
		"-leading-hyphen",
		"trailing-hyphen-",
		"a..b",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateDomain(name); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", name, err)
			}
		})
	}
}

func TestValidateDomain_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		wantMsg string
	}{
		{"", "cannot be empty"},
		{".local", "must not start or end with a period"},
		{"app.local.", "must not start or end with a period"},
		{".", "must not start or end with a period"},
		{"my app.local", "invalid characters"},
		{"app_local", "invalid characters"},
		{"app.local/evil", "invalid characters"},
		{"../etc/passwd", "invalid characters"},
		{"app;rm", "invalid characters"},
		{"ünïcode.local", "invalid characters"},
		{"tab\tname", "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.name)
			if err == nil {
				t.Fatalf("expected %q to be invalid, got nil", tt.name)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		elevated bool
		wantErr  bool
	}{
		{"zero elevated", 0, true, true},
		{"zero unprivileged", 0, false, true},
		{"negative", -1, true, true},
		{"too large", 65536, true, true},
		{"one elevated", 1, true, false},
		{"one unprivileged", 1, false, true},
		{"443 elevated", 443, true, false},
		{"1023 unprivileged", 1023, false, true},
		{"1024 unprivileged", 1024, false, false},
		{"3000 unprivileged", 3000, false, false},
		{"max elevated", 65535, true, false},
		{"max unprivileged", 65535, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port, tt.elevated)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePort(%d, %v) error = %v, wantErr %v", tt.port, tt.elevated, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidatePort_AllValidWhenElevated(t *testing.T) {
	for port := 1; port <= 65535; port++ {
		if err := ValidatePort(port, true); err != nil {
			t.Fatalf("ValidatePort(%d, true) = %v, want nil", port, err)
		}
	}
}

package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusacloud/localstacker/internal/certs"
	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/fsops"
	"nusacloud/localstacker/internal/logging"
	"nusacloud/localstacker/internal/nginx"
	"nusacloud/localstacker/internal/privilege"
	"nusacloud/localstacker/internal/registry"
	"nusacloud/localstacker/internal/runner"
	"nusacloud/localstacker/internal/systemd"
)

func TestProvision_CreatesRecord(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	assert.Equal(t, domain.Created, res.Outcome)

	want := []domain.DomainRecord{{
		Domain:          "app.local",
		Port:            4000,
		CertificatePath: "/etc/nginx/ssl/app.local.pem",
		KeyPath:         "/etc/nginx/ssl/app.local-key.pem",
		ProxyConfigPath: "/etc/nginx/sites-available/app.local",
		CreatedAt:       h.now,
		Enabled:         true,
	}}
	if diff := cmp.Diff(want, h.store.List()); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}

	wantPaths := []string{
		"/etc/nginx/sites-available/app.local",
		"/etc/nginx/sites-enabled/app.local",
		"/etc/nginx/ssl/app.local-key.pem",
		"/etc/nginx/ssl/app.local.pem",
	}
	if diff := cmp.Diff(wantPaths, h.fs.Paths()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	cert, err := h.fs.ReadFile("/etc/nginx/ssl/app.local.pem")
	require.NoError(t, err)
	assert.Equal(t, "CERT app.local", string(cert))

	assert.Equal(t, []string{"install-ca /home/alice/.local/share/mkcert", "issue app.local"}, h.ca.Calls)
	assert.Equal(t, []string{"nginx -t", "nginx -s reload"}, h.runner.RunLines())
}

func TestProvision_SecondRunUpdates(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created := h.now

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)

	h.now = h.now.Add(48 * time.Hour)
	res, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 5000})
	require.NoError(t, err)
	assert.Equal(t, domain.Updated, res.Outcome)

	records := h.store.List()
	require.Len(t, records, 1)
	assert.Equal(t, 5000, records[0].Port)
	assert.True(t, records[0].CreatedAt.Equal(created), "CreatedAt should keep the first provisioning time")

	text, err := h.fs.ReadFile("/etc/nginx/sites-available/app.local")
	require.NoError(t, err)
	assert.Contains(t, string(text), "127.0.0.1:5000")
}

func TestProvision_InstallsMissingTool(t *testing.T) {
	h := newHarness(t, true)
	h.ca.Available = false

	_, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	assert.Equal(t, "install-tool", h.ca.Calls[0])
	assert.NotEmpty(t, h.reporter.warnings)
}

func TestProvision_ValidationBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		req      ProvisionRequest
		elevated bool
		wantErr  error
	}{
		{name: "bad domain", req: ProvisionRequest{Domain: "bad_domain", Port: 4000}, elevated: true, wantErr: domain.ErrValidation},
		{name: "leading dot", req: ProvisionRequest{Domain: ".app.local", Port: 4000}, elevated: true, wantErr: domain.ErrValidation},
		{name: "port zero", req: ProvisionRequest{Domain: "app.local", Port: 0}, elevated: true, wantErr: domain.ErrValidation},
		{name: "port too large", req: ProvisionRequest{Domain: "app.local", Port: 70000}, elevated: true, wantErr: domain.ErrValidation},
		{name: "not elevated", req: ProvisionRequest{Domain: "app.local", Port: 4000}, elevated: false, wantErr: domain.ErrPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.elevated)

			_, err := h.svc.Provision(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, h.ca.Calls)
			assert.Empty(t, h.runner.Runs)
			assert.Empty(t, h.fs.Paths())
			assert.Empty(t, h.store.List())
		})
	}
}

func TestProvision_NoOverwrite(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	h.ca.Calls = nil

	_, err = h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 5000, NoOverwrite: true})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Empty(t, h.ca.Calls)

	rec, ok := h.store.Get("app.local")
	require.True(t, ok)
	assert.Equal(t, 4000, rec.Port)
}

func TestProvision_ConfigInvalidStopsBeforeReload(t *testing.T) {
	h := newHarness(t, true)
	h.runner.Responses["nginx -t"] = runner.FakeResponse{ExitCode: 1}

	_, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.ErrorIs(t, err, domain.ErrConfigInvalid)

	assert.Equal(t, []string{"nginx -t"}, h.runner.RunLines())
	assert.Empty(t, h.store.List(), "failed provisioning must not register the domain")
}

func TestProvision_IssueFailureLeavesNoRecord(t *testing.T) {
	h := newHarness(t, true)
	h.ca.IssueErr = errors.Join(domain.ErrExternalTool, errors.New("mkcert exploded"))

	_, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.ErrorIs(t, err, domain.ErrExternalTool)
	assert.Empty(t, h.runner.Runs)
	assert.Empty(t, h.store.List())
}

func TestProvision_Service(t *testing.T) {
	t.Run("existing service restarted", func(t *testing.T) {
		h := newHarness(t, true)
		h.services.Units["api"] = true

		res, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000, Service: "api"})
		require.NoError(t, err)
		assert.True(t, res.ServiceRestarted)
		assert.Equal(t, []string{"api"}, h.services.Restarted)
		assert.Equal(t, "api", res.Record.Service)
	})

	t.Run("missing service is a warning", func(t *testing.T) {
		h := newHarness(t, true)

		res, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000, Service: "ghost"})
		require.NoError(t, err)
		assert.False(t, res.ServiceRestarted)
		assert.Contains(t, h.reporter.warnings, "Service ghost not found, skipping restart")
		_, ok := h.store.Get("app.local")
		assert.True(t, ok)
	})

	t.Run("lookup failure is a warning", func(t *testing.T) {
		h := newHarness(t, true)
		h.services.LookupErr = domain.ErrExternalTool

		_, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000, Service: "api"})
		require.NoError(t, err)
		assert.Empty(t, h.services.Restarted)
	})

	t.Run("restart failure aborts", func(t *testing.T) {
		h := newHarness(t, true)
		h.services.Units["api"] = true
		h.services.RestartErr = domain.ErrExternalTool

		_, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000, Service: "api"})
		require.ErrorIs(t, err, domain.ErrExternalTool)
		assert.Empty(t, h.store.List())
	})
}

func TestDeprovision_KeepsCertificates(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)

	rec, err := h.svc.Deprovision(ctx, DeprovisionRequest{Domain: "app.local"})
	require.NoError(t, err)
	assert.Equal(t, 4000, rec.Port)

	wantPaths := []string{
		"/etc/nginx/ssl/app.local-key.pem",
		"/etc/nginx/ssl/app.local.pem",
	}
	if diff := cmp.Diff(wantPaths, h.fs.Paths()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	_, ok := h.store.Get("app.local")
	assert.False(t, ok)
}

func TestDeprovision_RemovesCertificates(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)

	_, err = h.svc.Deprovision(ctx, DeprovisionRequest{Domain: "app.local", RemoveCertificates: true})
	require.NoError(t, err)
	assert.Empty(t, h.fs.Paths())
}

func TestDeprovision_NotFound(t *testing.T) {
	h := newHarness(t, true)
	h.fs.Put("/etc/nginx/sites-available/other.local", "server {}")

	_, err := h.svc.Deprovision(context.Background(), DeprovisionRequest{Domain: "missing.local", RemoveCertificates: true})
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{"/etc/nginx/sites-available/other.local"}, h.fs.Paths())
	assert.Empty(t, h.runner.Runs)
}

func TestDeprovision_ReloadFailureKeepsRecord(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	h.runner.Responses["nginx -s reload"] = runner.FakeResponse{ExitCode: 1}

	_, err = h.svc.Deprovision(ctx, DeprovisionRequest{Domain: "app.local"})
	require.ErrorIs(t, err, domain.ErrExternalTool)

	_, ok := h.store.Get("app.local")
	assert.True(t, ok, "record must survive until cleanup succeeds")
}

func TestDeprovision_RequiresElevation(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.svc.Deprovision(context.Background(), DeprovisionRequest{Domain: "app.local"})
	require.ErrorIs(t, err, domain.ErrPermission)
}

func TestEnableDisable(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)

	rec, err := h.svc.Disable(ctx, "app.local")
	require.NoError(t, err)
	assert.False(t, rec.Enabled)
	assert.False(t, h.fs.Exists("/etc/nginx/sites-enabled/app.local"))

	// Disabling twice is fine.
	_, err = h.svc.Disable(ctx, "app.local")
	require.NoError(t, err)

	stored, _ := h.store.Get("app.local")
	assert.False(t, stored.Enabled)

	rec, err = h.svc.Enable(ctx, "app.local")
	require.NoError(t, err)
	assert.True(t, rec.Enabled)
	target, ok := h.fs.LinkTarget("/etc/nginx/sites-enabled/app.local")
	assert.True(t, ok)
	assert.Equal(t, "/etc/nginx/sites-available/app.local", target)
}

func TestEnable_Errors(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Enable(ctx, "missing.local")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	require.NoError(t, h.fs.Remove("/etc/nginx/sites-available/app.local"))

	_, err = h.svc.Enable(ctx, "app.local")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInstallCertTool(t *testing.T) {
	t.Run("already installed", func(t *testing.T) {
		h := newHarness(t, true)

		installed, err := h.svc.InstallCertTool(context.Background(), false)
		require.NoError(t, err)
		assert.False(t, installed)
		assert.Empty(t, h.ca.Calls)
	})

	t.Run("force reinstalls", func(t *testing.T) {
		h := newHarness(t, true)

		installed, err := h.svc.InstallCertTool(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, installed)
		assert.Equal(t, []string{"install-tool", "install-ca /home/alice/.local/share/mkcert"}, h.ca.Calls)
	})

	t.Run("requires elevation", func(t *testing.T) {
		h := newHarness(t, false)

		_, err := h.svc.InstallCertTool(context.Background(), true)
		require.ErrorIs(t, err, domain.ErrPermission)
	})
}

func TestProvision_DryRun(t *testing.T) {
	dir := t.TempDir()

	// A certificate tool that fails if it is ever executed.
	mkcertBin := filepath.Join(dir, "mkcert")
	require.NoError(t, os.WriteFile(mkcertBin, []byte("#!/bin/sh\nexit 1\n"), 0o755))

	logger := logging.Discard()
	mem := fsops.NewMemFS()
	fs := fsops.NewDryRun(mem, logger)
	exec := runner.New(logger, true)

	registryPath := filepath.Join(dir, "domains.json")
	store, err := registry.Open(registryPath, registry.Options{DryRun: true, Logger: logger})
	require.NoError(t, err)

	svc := NewService(Deps{
		CA:       certs.New(exec, fs, logger, certs.Options{Binary: mkcertBin, StagingDir: filepath.Join(dir, "staging")}),
		Proxy:    nginx.New(exec, fs, logger, filepath.Join(dir, "nginx"), nginx.DefaultPaths),
		Services: systemd.New(exec, filepath.Join(dir, "systemctl")),
		FS:       fs,
		Store:    store,
		Auth:     privilege.Static(true),
		Logger:   logger,
	}, Settings{SSLDir: nginx.DefaultPaths.SSLDir})

	res, err := svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	assert.Equal(t, domain.Created, res.Outcome)

	assert.Empty(t, mem.Paths())
	_, statErr := os.Stat(registryPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "registry must not be written in dry run")
	_, statErr = os.Stat(filepath.Join(dir, "staging"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "staging dir must not be created in dry run")
}

func TestProvision_ToolInstallFailureIsNotRetried(t *testing.T) {
	h := newHarness(t, true)
	h.runner.Executables["apt-get"] = true
	h.runner.Responses["apt-get update"] = runner.FakeResponse{ExitCode: 100}

	svc := NewService(Deps{
		CA:       certs.New(h.runner, h.fs, logging.Discard(), certs.Options{StagingDir: stagingDir}),
		Proxy:    nginx.New(h.runner, h.fs, logging.Discard(), "", nginx.DefaultPaths),
		Services: h.services,
		FS:       h.fs,
		Store:    h.store,
		Auth:     privilege.Static(true),
		Logger:   logging.Discard(),
	}, Settings{SSLDir: nginx.DefaultPaths.SSLDir})

	_, err := svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000})
	require.ErrorIs(t, err, domain.ErrExternalTool)

	assert.Equal(t, []string{"apt-get update"}, h.runner.RunLines())
	assert.Empty(t, h.store.List())
}

func TestProvision_NoOverwriteRechecksUnderLock(t *testing.T) {
	h := newHarness(t, true)

	// Another invocation registers the domain after h.store was loaded.
	other, err := registry.Open(h.store.Path(), registry.Options{})
	require.NoError(t, err)
	first := domain.DomainRecord{Domain: "app.local", Port: 4000, Enabled: true, CreatedAt: h.now}
	_, err = other.Upsert(first)
	require.NoError(t, err)

	_, err = h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 5000, NoOverwrite: true})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	reread, err := registry.Open(h.store.Path(), registry.Options{})
	require.NoError(t, err)
	rec, ok := reread.Get("app.local")
	require.True(t, ok)
	assert.Equal(t, 4000, rec.Port)
}

func TestProvision_NoOverwriteCreates(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.svc.Provision(context.Background(), ProvisionRequest{Domain: "app.local", Port: 4000, NoOverwrite: true})
	require.NoError(t, err)
	assert.Equal(t, domain.Created, res.Outcome)

	_, ok := h.store.Get("app.local")
	assert.True(t, ok)
}

func TestDeprovision_ConfigInvalidStopsBeforeReload(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
	require.NoError(t, err)
	before, _ := h.store.Get("app.local")
	h.runner.Runs = nil
	h.runner.Responses["nginx -t"] = runner.FakeResponse{ExitCode: 1}

	_, err = h.svc.Deprovision(ctx, DeprovisionRequest{Domain: "app.local"})
	require.ErrorIs(t, err, domain.ErrConfigInvalid)

	assert.Equal(t, []string{"nginx -t"}, h.runner.RunLines())
	after, ok := h.store.Get("app.local")
	require.True(t, ok, "record must survive a rejected configuration")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("record changed (-want +got):\n%s", diff)
	}
}

func TestToggle_ConfigInvalidStopsBeforeReload(t *testing.T) {
	tests := []struct {
		name   string
		toggle func(*Service, context.Context, string) (*domain.DomainRecord, error)
		prep   func(*testing.T, *harness)
	}{
		{
			name:   "disable",
			toggle: (*Service).Disable,
		},
		{
			name:   "enable",
			toggle: (*Service).Enable,
			prep: func(t *testing.T, h *harness) {
				_, err := h.svc.Disable(context.Background(), "app.local")
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			ctx := context.Background()

			_, err := h.svc.Provision(ctx, ProvisionRequest{Domain: "app.local", Port: 4000})
			require.NoError(t, err)
			if tt.prep != nil {
				tt.prep(t, h)
			}
			before, _ := h.store.Get("app.local")
			h.runner.Runs = nil
			h.runner.Responses["nginx -t"] = runner.FakeResponse{ExitCode: 1}

			_, err = tt.toggle(h.svc, ctx, "app.local")
			require.ErrorIs(t, err, domain.ErrConfigInvalid)

			assert.Equal(t, []string{"nginx -t"}, h.runner.RunLines())
			after, _ := h.store.Get("app.local")
			assert.Equal(t, before.Enabled, after.Enabled)
		})
	}
}

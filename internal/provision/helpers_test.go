package provision

import (
	"path/filepath"
	"testing"
	"time"

	"nusacloud/localstacker/internal/certs"
	"nusacloud/localstacker/internal/fsops"
	"nusacloud/localstacker/internal/logging"
	"nusacloud/localstacker/internal/nginx"
	"nusacloud/localstacker/internal/privilege"
	"nusacloud/localstacker/internal/registry"
	"nusacloud/localstacker/internal/runner"
	"nusacloud/localstacker/internal/systemd"
)

const stagingDir = "/var/lib/localstacker/staging"

// recordingReporter keeps every message by kind.
type recordingReporter struct {
	successes []string
	infos     []string
	warnings  []string
}

func (r *recordingReporter) Success(msg string) { r.successes = append(r.successes, msg) }
func (r *recordingReporter) Info(msg string)    { r.infos = append(r.infos, msg) }
func (r *recordingReporter) Warning(msg string) { r.warnings = append(r.warnings, msg) }

type harness struct {
	svc      *Service
	fs       *fsops.MemFS
	runner   *runner.FakeRunner
	ca       *certs.FakeAuthority
	services *systemd.FakeController
	store    *registry.Registry
	reporter *recordingReporter
	now      time.Time
}

func newHarness(t *testing.T, elevated bool) *harness {
	t.Helper()

	fs := fsops.NewMemFS()
	r := runner.NewFakeRunner()
	store, err := registry.Open(filepath.Join(t.TempDir(), "domains.json"), registry.Options{})
	if err != nil {
		t.Fatalf("registry.Open() error = %v", err)
	}

	h := &harness{
		fs:       fs,
		runner:   r,
		ca:       certs.NewFakeAuthority(fs, stagingDir),
		services: systemd.NewFakeController(),
		store:    store,
		reporter: &recordingReporter{},
		now:      time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	h.svc = NewService(Deps{
		CA:       h.ca,
		Proxy:    nginx.New(r, fs, logging.Discard(), "", nginx.DefaultPaths),
		Services: h.services,
		FS:       fs,
		Store:    store,
		Auth:     privilege.Static(elevated),
		Logger:   logging.Discard(),
		Reporter: h.reporter,
		Now:      func() time.Time { return h.now },
	}, Settings{
		SSLDir: nginx.DefaultPaths.SSLDir,
		CARoot: "/home/alice/.local/share/mkcert",
	})
	return h
}

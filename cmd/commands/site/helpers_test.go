package site

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/certs"
	"nusacloud/localstacker/internal/config"
	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/fsops"
	"nusacloud/localstacker/internal/logging"
	"nusacloud/localstacker/internal/nginx"
	"nusacloud/localstacker/internal/privilege"
	"nusacloud/localstacker/internal/provision"
	"nusacloud/localstacker/internal/registry"
	"nusacloud/localstacker/internal/runner"
	"nusacloud/localstacker/internal/status"
	"nusacloud/localstacker/internal/systemd"
	"nusacloud/localstacker/internal/ui"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

const stagingDir = "/var/lib/localstacker/staging"

// testEnv backs the commands with in-memory capabilities.
type testEnv struct {
	fs           *fsops.MemFS
	runner       *runner.FakeRunner
	ca           *certs.FakeAuthority
	services     *systemd.FakeController
	registryPath string
	ports        status.StaticPorts
	prober       status.StaticProber
	elevated     bool
	cfg          *config.Config
	now          time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fs := fsops.NewMemFS()
	env := &testEnv{
		fs:           fs,
		runner:       runner.NewFakeRunner(),
		ca:           certs.NewFakeAuthority(fs, stagingDir),
		services:     systemd.NewFakeController(),
		registryPath: filepath.Join(t.TempDir(), "domains.json"),
		ports:        status.StaticPorts{},
		prober:       status.StaticProber{Codes: map[string]int{}},
		elevated:     true,
		cfg:          config.Defaults(),
		now:          time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	app.SetBuilder(env.build)
	t.Cleanup(app.ResetBuilder)
	return env
}

func (e *testEnv) build(opts app.Options) (*app.App, error) {
	var fs domain.FileSystem = e.fs
	if opts.DryRun {
		fs = fsops.NewDryRun(fs, logging.Discard())
	}
	store, err := registry.Open(e.registryPath, registry.Options{DryRun: opts.DryRun})
	if err != nil {
		return nil, err
	}

	console := ui.NewConsole(opts.Stdout, opts.Stderr)
	proxy := nginx.New(e.runner, fs, logging.Discard(), "", nginx.DefaultPaths)
	now := func() time.Time { return e.now }

	return &app.App{
		Options:  opts,
		Config:   e.cfg,
		Logger:   logging.Discard(),
		Console:  console,
		Registry: store,
		Provisioner: provision.NewService(provision.Deps{
			CA:       e.ca,
			Proxy:    proxy,
			Services: e.services,
			FS:       fs,
			Store:    store,
			Auth:     privilege.Static(e.elevated),
			Logger:   logging.Discard(),
			Reporter: console,
			Now:      now,
		}, provision.Settings{SSLDir: nginx.DefaultPaths.SSLDir}),
		Status: status.NewEvaluator(status.Deps{
			Store:    store,
			FS:       fs,
			Proxy:    proxy,
			Services: e.services,
			Ports:    e.ports,
			HTTPS:    e.prober,
			Now:      now,
		}),
	}, nil
}

// store opens the registry the commands wrote to.
func (e *testEnv) store(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.Open(e.registryPath, registry.Options{})
	if err != nil {
		t.Fatalf("registry.Open() error = %v", err)
	}
	return r
}

// seed provisions name through the setup command.
func (e *testEnv) seed(t *testing.T, name string, port int) {
	t.Helper()
	if _, _, err := execSite(t, "setup", "--domain", name, "--port", itoa(port)); err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
}

// execSite runs the domain commands under a root carrying the global flags
// and returns the ANSI-stripped output.
func execSite(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	root := &cobra.Command{Use: "localstacker", SilenceErrors: true}
	root.PersistentFlags().BoolP("verbose", "v", false, "")
	root.PersistentFlags().BoolP("dry-run", "n", false, "")
	root.AddCommand(Commands()...)
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return ansi.Strip(outBuf.String()), ansi.Strip(errBuf.String()), err
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

// promptCall records one confirmation shown to the user.
type promptCall struct {
	title      string
	defaultYes bool
}

// stubPrompt makes stdin look interactive and answers every confirmation
// with answer.
func stubPrompt(t *testing.T, answer error) *[]promptCall {
	t.Helper()
	calls := &[]promptCall{}
	prevInteractive, prevAsk := interactive, askConfirm
	interactive = func() bool { return true }
	askConfirm = func(title, description string, defaultYes bool) error {
		*calls = append(*calls, promptCall{title: title, defaultYes: defaultYes})
		return answer
	}
	t.Cleanup(func() {
		interactive, askConfirm = prevInteractive, prevAsk
	})
	return calls
}

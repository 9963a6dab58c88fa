// Package app assembles the production capabilities behind the commands.
package app

import (
	"io"
	"log/slog"
	"os"

	"nusacloud/localstacker/internal/auditlog"
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

	"github.com/spf13/cobra"
)

// Options are the per-invocation switches from the global flags.
type Options struct {
	Verbose bool
	DryRun  bool

	// OperationID tags every log line of the invocation.
	OperationID string

	Stdout io.Writer
	Stderr io.Writer
}

// OptionsFromCommand reads the global flags and output streams of cmd.
// Flags that are not defined read as false.
func OptionsFromCommand(cmd *cobra.Command) Options {
	verbose, _ := cmd.Flags().GetBool("verbose")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	return Options{
		Verbose:     verbose,
		DryRun:      dryRun,
		OperationID: auditlog.OperationIDFromContext(cmd.Context()),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	}
}

// App bundles everything a command needs.
type App struct {
	Options  Options
	Config   *config.Config
	Logger   *slog.Logger
	Console  *ui.Console
	Registry registry.Store

	Provisioner *provision.Service
	Status      *status.Evaluator
}

// Builder constructs an App.
type Builder func(opts Options) (*App, error)

var builder Builder = Build

// SetBuilder replaces the constructor used by New. Intended for testing.
func SetBuilder(b Builder) { builder = b }

// ResetBuilder restores the production constructor. Intended for testing.
func ResetBuilder() { builder = Build }

// New returns an App for opts using the current Builder.
func New(opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return builder(opts)
}

// Build wires the real mkcert, nginx, systemd, filesystem and registry
// implementations. In dry-run mode every side-effecting layer is swapped for
// its logging counterpart.
func Build(opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Verbose: opts.Verbose, Writer: opts.Stderr})
	if opts.OperationID != "" {
		logger = logger.With("op", opts.OperationID)
	}
	console := ui.NewConsole(opts.Stdout, opts.Stderr)

	exec := runner.New(logger, opts.DryRun)

	var fs domain.FileSystem = fsops.NewOS()
	if opts.DryRun {
		fs = fsops.NewDryRun(fs, logger)
	}

	store, err := registry.Open(cfg.RegistryPath, registry.Options{DryRun: opts.DryRun, Logger: logger})
	if err != nil {
		return nil, err
	}

	proxy := nginx.New(exec, fs, logger, cfg.WebServer, nginx.Paths{
		SSLDir:       cfg.SSLDir,
		AvailableDir: cfg.SitesAvailableDir,
		EnabledDir:   cfg.SitesEnabledDir,
	})
	ca := certs.New(exec, fs, logger, certs.Options{Binary: cfg.CertTool, StagingDir: cfg.StagingDir})
	services := systemd.New(exec, cfg.ServiceManager)

	caRoot := privilege.CARoot(privilege.SystemEnv())
	logger.Debug("Resolved CA root", "caroot", caRoot)

	return &App{
		Options:  opts,
		Config:   cfg,
		Logger:   logger,
		Console:  console,
		Registry: store,
		Provisioner: provision.NewService(provision.Deps{
			CA:       ca,
			Proxy:    proxy,
			Services: services,
			FS:       fs,
			Store:    store,
			Auth:     privilege.NewOS(),
			Logger:   logger,
			Reporter: console,
		}, provision.Settings{
			SSLDir: cfg.SSLDir,
			CARoot: caRoot,
		}),
		Status: status.NewEvaluator(status.Deps{
			Store:    store,
			FS:       fs,
			Proxy:    proxy,
			Services: services,
			Ports:    status.NewSocketTable(),
			HTTPS:    status.NewHTTPSProber(cfg.ProbeTimeout),
			Logger:   logger,
		}),
	}, nil
}

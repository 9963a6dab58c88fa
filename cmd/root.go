package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"nusacloud/localstacker/cmd/commands/audit"
	"nusacloud/localstacker/cmd/commands/certtool"
	cfgcmd "nusacloud/localstacker/cmd/commands/config"
	"nusacloud/localstacker/cmd/commands/site"
	"nusacloud/localstacker/internal/auditlog"
	"nusacloud/localstacker/internal/config"
	"nusacloud/localstacker/internal/ui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "localstacker",
		Short: "Local HTTPS domains for development services",
		Long: `localstacker gives local development services a trusted HTTPS domain.
It issues certificates with mkcert, writes an nginx reverse proxy for each
domain, reloads nginx, optionally restarts a systemd service and keeps a
registry of everything it configured.

Quick start:
  sudo localstacker install-cert-tool                 # mkcert + local CA
  sudo localstacker setup -d app.local -p 3000        # provision a domain
  localstacker list                                   # registered domains
  localstacker status                                 # check for drift
  sudo localstacker remove app.local                  # tear it down`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("dry-run", "n", false, "Show what would be done without changing anything")

	cmd.AddCommand(site.Commands()...)
	cmd.AddCommand(certtool.NewCommand())
	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	os.Exit(run(root, os.Args[1:]))
}

// run executes root with args, records the invocation and returns the
// process exit code.
func run(root *cobra.Command, args []string) int {
	start := time.Now()
	opID := uuid.NewString()

	root.SetArgs(args)
	executed, err := root.ExecuteContextC(auditlog.WithOperationID(context.Background(), opID))
	recordAudit(executed, args, opID, err, start)

	if err != nil {
		ui.NewConsole(root.OutOrStdout(), root.ErrOrStderr()).Failure(err.Error())
		return 1
	}
	return 0
}

// recordAudit is the centralized audit writer. Only commands annotated with
// auditlog.Annotation are recorded, never in dry-run mode. Failures to
// open or write the log are ignored.
func recordAudit(cmd *cobra.Command, args []string, opID string, cmdErr error, start time.Time) {
	if cmd == nil || cmd.Annotations[auditlog.Annotation] != "true" {
		return
	}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		return
	}
	repo, err := auditlog.Open(cfg.AuditDBPath)
	if err != nil {
		return
	}
	defer repo.Close()

	meta := auditlog.MetadataFromContext(cmd.Context())
	entry := &auditlog.AuditEntry{
		OperationID: opID,
		Timestamp:   start,
		Command:     cmd.CommandPath(),
		Args:        strings.Join(args, " "),
		Domain:      meta.Domain,
		Port:        meta.Port,
		Service:     meta.Service,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if cmdErr != nil {
		entry.Outcome = auditlog.OutcomeError
		entry.Detail = cmdErr.Error()
	} else {
		entry.Outcome = auditlog.OutcomeSuccess
	}
	_ = repo.Save(entry)
}

package audit

import (
	"nusacloud/localstacker/internal/auditlog"
	"nusacloud/localstacker/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View and manage audit history",
		Long: "View the local audit trail of localstacker commands that changed the\n" +
			"system, and prune old entries.\n\n" +
			"Audit history is stored in the SQLite file named by the audit-db setting\n" +
			"(default /var/lib/localstacker/localstacker.db).",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}

// openRepository opens the audit log named by the configuration.
func openRepository() (*auditlog.SQLiteRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return auditlog.Open(cfg.AuditDBPath)
}

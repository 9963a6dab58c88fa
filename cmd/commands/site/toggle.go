package site

import (
	"context"
	"fmt"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/auditlog"
	"nusacloud/localstacker/internal/domain"

	"github.com/spf13/cobra"
)

func EnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <domain>",
		Short: "Re-enable a disabled domain",
		Long: `Link a registered domain's nginx configuration back into the enabled
sites and reload nginx. Requires root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd, args[0], "enabled", func(ctx context.Context, a *app.App, name string) (*domain.DomainRecord, error) {
				return a.Provisioner.Enable(ctx, name)
			})
		},
		SilenceUsage: true,
		Annotations:  auditlog.Audited(),
	}
}

func DisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <domain>",
		Short: "Disable a domain without removing it",
		Long: `Unlink a registered domain from the enabled sites and reload nginx. The
configuration, certificates and registry record are kept so the domain can
be re-enabled later. Requires root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd, args[0], "disabled", func(ctx context.Context, a *app.App, name string) (*domain.DomainRecord, error) {
				return a.Provisioner.Disable(ctx, name)
			})
		},
		SilenceUsage: true,
		Annotations:  auditlog.Audited(),
	}
}

type toggleFunc func(ctx context.Context, a *app.App, name string) (*domain.DomainRecord, error)

func runToggle(cmd *cobra.Command, name, verb string, toggle toggleFunc) error {
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Domain: name}))

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}

	rec, err := toggle(cmd.Context(), a, name)
	if err != nil {
		return err
	}
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Port: rec.Port, Service: rec.Service}))

	if a.Options.DryRun {
		a.Console.Info("Dry run: no changes were made")
		return nil
	}
	a.Console.Success(fmt.Sprintf("%s %s", name, verb))
	return nil
}

package site

import (
	"fmt"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/auditlog"
	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/provision"

	"github.com/spf13/cobra"
)

func RemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <domain>",
		Short: "Remove a configured domain",
		Long: `Disable and delete a domain's nginx configuration, reload nginx and drop
it from the registry. Certificates are kept unless --remove-certs is given.
Requires root.

Examples:
  sudo localstacker remove app.local
  sudo localstacker remove app.local --remove-certs --yes`,
		Args:         cobra.ExactArgs(1),
		RunE:         runRemove,
		SilenceUsage: true,
		Annotations:  auditlog.Audited(),
	}

	cmd.Flags().Bool("remove-certs", false, "Also delete the certificate and key")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	removeCerts, _ := cmd.Flags().GetBool("remove-certs")
	yes, _ := cmd.Flags().GetBool("yes")

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Domain: name}))

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}

	rec, ok := a.Registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: domain %q", domain.ErrNotFound, name)
	}
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Port: rec.Port, Service: rec.Service}))
	a.Console.Info(fmt.Sprintf("Found configuration for %s", name))

	description := "The nginx configuration will be deleted."
	if removeCerts {
		description = "The nginx configuration and SSL certificates will be deleted."
	}
	if err := confirm(a, yes, fmt.Sprintf("Remove SSL configuration for %s?", name), description, false); err != nil {
		if cancelled(a, err, "Removal") {
			return nil
		}
		return err
	}

	if _, err := a.Provisioner.Deprovision(cmd.Context(), provision.DeprovisionRequest{
		Domain:             name,
		RemoveCertificates: removeCerts,
	}); err != nil {
		return err
	}

	if a.Options.DryRun {
		a.Console.Info("Dry run: no changes were made")
		return nil
	}
	a.Console.Blank()
	a.Console.Success(fmt.Sprintf("Successfully removed %s", name))
	return nil
}

// Package certtool installs the certificate tool and its local CA.
package certtool

import (
	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/auditlog"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-cert-tool",
		Short: "Install mkcert and its local certificate authority",
		Long: `Install mkcert with the system package manager (apt-get, dnf, yum or
brew) and register its local certificate authority in the trust stores.
When run through sudo the CA of the invoking user is used. Requires root.

Examples:
  sudo localstacker install-cert-tool
  sudo localstacker install-cert-tool --force`,
		Args:         cobra.NoArgs,
		RunE:         runInstall,
		SilenceUsage: true,
		Annotations:  auditlog.Audited(),
	}

	cmd.Flags().BoolP("force", "f", false, "Reinstall even if mkcert is present")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}

	installed, err := a.Provisioner.InstallCertTool(cmd.Context(), force)
	if err != nil {
		return err
	}
	if installed && !a.Options.DryRun {
		a.Console.Blank()
		a.Console.Success("mkcert is ready. Run setup to provision a domain.")
	}
	return nil
}

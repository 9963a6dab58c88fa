package site

import (
	"fmt"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/auditlog"
	"nusacloud/localstacker/internal/provision"

	"github.com/spf13/cobra"
)

func SetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision HTTPS for a local domain",
		Long: `Issue a locally trusted certificate for a domain, write an nginx virtual
host that proxies it to a local port, enable the site and reload nginx.

Running setup again for a registered domain regenerates everything and
updates the record. Requires root.

Examples:
  sudo localstacker setup --domain app.local --port 3000
  sudo localstacker setup -d api.local -p 8080 --service api --yes
  sudo localstacker setup -d app.local -p 3000 --template ./vhost.conf`,
		Args:         cobra.NoArgs,
		RunE:         runSetup,
		SilenceUsage: true,
		Annotations:  auditlog.Audited(),
	}

	cmd.Flags().StringP("domain", "d", "", "Domain to provision (e.g. app.local)")
	cmd.Flags().IntP("port", "p", 0, "Local backend port to proxy to")
	cmd.Flags().StringP("service", "s", "", "systemd service to restart afterwards")
	cmd.Flags().StringP("template", "t", "", "Custom nginx template file")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Bool("no-overwrite", false, "Fail if the domain is already configured")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("port")

	return cmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("domain")
	port, _ := cmd.Flags().GetInt("port")
	service, _ := cmd.Flags().GetString("service")
	template, _ := cmd.Flags().GetString("template")
	yes, _ := cmd.Flags().GetBool("yes")
	noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		Domain:  name,
		Port:    port,
		Service: service,
	}))

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}
	if template == "" {
		template = a.Config.DefaultTemplate
	}

	a.Console.Info(fmt.Sprintf("Setting up SSL for %s -> localhost:%d", name, port))

	description := fmt.Sprintf("This will generate a certificate for %s, create and enable its nginx configuration and reload nginx.", name)
	if err := confirm(a, yes, "Continue?", description, true); err != nil {
		if cancelled(a, err, "Setup") {
			return nil
		}
		return err
	}

	result, err := a.Provisioner.Provision(cmd.Context(), provision.ProvisionRequest{
		Domain:       name,
		Port:         port,
		Service:      service,
		TemplatePath: template,
		NoOverwrite:  noOverwrite,
	})
	if err != nil {
		return err
	}

	if a.Options.DryRun {
		a.Console.Info("Dry run: no changes were made")
		return nil
	}

	a.Console.Success(fmt.Sprintf("Configuration %s", result.Outcome))
	a.Console.Banner("Setup completed successfully!")
	a.Console.Field("URL", "https://"+name)
	a.Console.Field("Backend", fmt.Sprintf("localhost:%d", port))
	a.Console.Blank()
	fmt.Fprintln(a.Console.Out(), "  Next steps:")
	fmt.Fprintf(a.Console.Out(), "    • Make sure your backend is running on port %d\n", port)
	fmt.Fprintf(a.Console.Out(), "    • Add %s to your /etc/hosts if needed\n", name)
	fmt.Fprintf(a.Console.Out(), "    • Visit https://%s in your browser\n", name)
	a.Console.Blank()
	return nil
}

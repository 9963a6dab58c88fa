package site

import (
	"fmt"
	"text/tabwriter"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/domain"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured domains",
		Long: `List every domain in the registry.

Examples:
  localstacker list
  localstacker list --detailed
  localstacker list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("detailed", false, "Show certificate and config paths")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	detailed, _ := cmd.Flags().GetBool("detailed")

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}

	records := a.Registry.List()
	if output == "json" {
		if records == nil {
			records = []domain.DomainRecord{}
		}
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		a.Console.Warning("No domains configured yet.")
		fmt.Fprintf(cmd.OutOrStdout(), "\nUse %s to setup a new domain\n",
			a.Console.Accent("localstacker setup --domain <domain> --port <port>"))
		return nil
	}

	if detailed {
		printDetailed(a, records)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tBACKEND\tSERVICE\tENABLED")
	fmt.Fprintln(w, "------\t-------\t-------\t-------")
	for _, rec := range records {
		service := rec.Service
		if service == "" {
			service = "-"
		}
		fmt.Fprintf(w, "%s\tlocalhost:%d\t%s\t%s\n", rec.Domain, rec.Port, service, yesNo(rec.Enabled))
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", a.Console.Muted(
		fmt.Sprintf("Showing %d domain(s). Use --detailed for more info.", len(records))))
	return nil
}

func printDetailed(a *app.App, records []domain.DomainRecord) {
	a.Console.Title("Configured SSL Domains")
	for _, rec := range records {
		fmt.Fprintf(a.Console.Out(), "%s -> localhost:%d\n", a.Console.Accent(rec.Domain), rec.Port)
		a.Console.Field("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		a.Console.Field("Enabled", yesNo(rec.Enabled))
		a.Console.Field("SSL Cert", rec.CertificatePath)
		a.Console.Field("SSL Key", rec.KeyPath)
		a.Console.Field("Nginx Config", rec.ProxyConfigPath)
		if rec.Service != "" {
			a.Console.Field("Service", rec.Service)
		}
		a.Console.Blank()
	}
}

package site

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/status"
	"nusacloud/localstacker/internal/ui"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [domain]",
		Short: "Check configured domains against the system",
		Long: `Compare registered domains with what is actually on the machine: the
certificate and its expiry, the nginx configuration and site link, the
backend port, the optional service and HTTPS reachability. Nothing is
modified.

Examples:
  localstacker status
  localstacker status app.local
  localstacker status -o json`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runStatus,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(app.OptionsFromCommand(cmd))
	if err != nil {
		return err
	}

	var reports []*status.Report
	var evalErr error
	probe := func() {
		if len(args) == 1 {
			var report *status.Report
			report, evalErr = a.Status.Evaluate(cmd.Context(), args[0])
			if report != nil {
				reports = []*status.Report{report}
			}
			return
		}
		reports = a.Status.EvaluateAll(cmd.Context())
	}

	if output == "table" && ui.StdoutIsTerminal() {
		spinErr := spinner.New().
			Title("Checking domains...").
			Accessible(os.Getenv("ACCESSIBLE") != "").
			Output(cmd.ErrOrStderr()).
			Action(probe).
			Run()
		if spinErr != nil {
			return spinErr
		}
	} else {
		probe()
	}
	if evalErr != nil {
		return evalErr
	}

	if output == "json" {
		if reports == nil {
			reports = []*status.Report{}
		}
		return printJSON(cmd, reports)
	}

	if len(reports) == 0 {
		a.Console.Warning("No domains configured yet.")
		return nil
	}

	if len(args) == 1 {
		printReport(a, reports[0])
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tCERT\tCONFIG\tENABLED\tBACKEND\tSERVICE\tHTTPS\tHEALTH")
	fmt.Fprintln(w, "------\t----\t------\t-------\t-------\t-------\t-----\t------")
	for _, r := range reports {
		service := r.ServiceState
		if service == "" {
			service = "-"
		}
		health := "ok"
		if !r.Healthy() {
			health = fmt.Sprintf("%d issue(s)", len(r.Findings))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Domain,
			yesNo(r.CertificatePresent),
			yesNo(r.ConfigPresent),
			yesNo(r.SiteEnabled),
			yesNo(r.BackendListening),
			service,
			httpsColumn(r),
			health,
		)
	}
	w.Flush()

	for _, r := range reports {
		for _, finding := range r.Findings {
			a.Console.Warning(fmt.Sprintf("%s: %s", r.Domain, finding))
		}
	}
	return nil
}

func printReport(a *app.App, r *status.Report) {
	c := a.Console
	c.Title(r.Domain)
	c.Field("Certificate", c.Check(r.CertificatePresent, "present", "missing"))
	if r.CertificateExpires != nil {
		c.Field("Expires", r.CertificateExpires.Format(time.DateOnly))
	}
	c.Field("Nginx config", c.Check(r.ConfigPresent, "present", "missing"))
	c.Field("Site", c.Check(r.SiteEnabled == r.RecordedEnabled, enabledText(r.SiteEnabled), enabledText(r.SiteEnabled)))
	c.Field("Backend", c.Check(r.BackendListening,
		fmt.Sprintf("localhost:%d listening", r.Port),
		fmt.Sprintf("localhost:%d not listening", r.Port)))
	if r.Service != "" {
		c.Field("Service", c.Check(r.ServiceState == status.ServiceRunning,
			r.Service+" "+r.ServiceState, r.Service+" "+r.ServiceState))
	}
	c.Field("HTTPS", c.Check(r.HTTPSReachable, httpsColumn(r), httpsColumn(r)))
	c.Blank()

	if r.Healthy() {
		c.Success("No issues found")
		return
	}
	for _, finding := range r.Findings {
		c.Warning(finding)
	}
}

func enabledText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func httpsColumn(r *status.Report) string {
	if r.HTTPSStatus == 0 {
		return "unreachable"
	}
	return fmt.Sprintf("%d", r.HTTPSStatus)
}

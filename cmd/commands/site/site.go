// Package site holds the commands that provision, inspect and remove local
// HTTPS domains.
package site

import (
	"encoding/json"
	"errors"
	"fmt"

	"nusacloud/localstacker/internal/app"
	"nusacloud/localstacker/internal/ui"

	"github.com/spf13/cobra"
)

// Commands returns the domain commands, registered directly on the root.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		SetupCommand(),
		ListCommand(),
		RemoveCommand(),
		StatusCommand(),
		EnableCommand(),
		DisableCommand(),
	}
}

// Prompt hooks, replaced in tests.
var (
	interactive = ui.StdinIsTerminal
	askConfirm  = ui.Confirm
)

// confirm asks before a destructive step. It is skipped with --yes, in
// dry-run mode and when stdin is not a terminal. defaultYes preselects the
// answer.
func confirm(a *app.App, yes bool, title, description string, defaultYes bool) error {
	if yes || a.Options.DryRun || !interactive() {
		return nil
	}
	return askConfirm(title, description, defaultYes)
}

// cancelled reports a declined prompt. The command then succeeds without
// doing anything.
func cancelled(a *app.App, err error, what string) bool {
	if errors.Is(err, ui.ErrAborted) {
		a.Console.Warning(what + " cancelled by user")
		return true
	}
	return false
}

func outputFormat(cmd *cobra.Command) (string, error) {
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "", "table":
		return "table", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported output format %q", output)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

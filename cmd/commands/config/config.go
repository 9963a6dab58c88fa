package config

import (
	"nusacloud/localstacker/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage localstacker configuration",
		Long: "View and modify persistent localstacker settings.\n\n" +
			"Configuration is stored at " + config.DefaultPath + " (override with\n" +
			config.PathEnv + "). Every key can also be set through a " + config.EnvPrefix + "*\n" +
			"environment variable.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}

package console

import (
	"github.com/spf13/cobra"
)

func NewConsoleCommand() *cobra.Command {
	var sender int64
	var debug bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run commands interactively against the real parser and handlers",
		Args:  cobra.NoArgs,
		Example: `  beatclaw console
  beatclaw console --sender 1745096608`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return consoleCmd(sender, debug)
		},
	}

	cmd.Flags().Int64Var(&sender, "sender", 0, "Simulated sender id (bindings attach to it)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

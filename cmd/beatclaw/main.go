package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/auth"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/console"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/gateway"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/migrate"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/onboard"
	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal/version"
)

func NewBeatclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s beatclaw - BeatLeader QQ bot v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "beatclaw",
		Short:   short,
		Example: "beatclaw gateway",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		console.NewConsoleCommand(),
		auth.NewAuthCommand(),
		migrate.NewMigrateCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewBeatclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

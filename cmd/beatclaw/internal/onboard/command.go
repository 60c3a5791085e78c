package onboard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/pkg/config"
)

func NewOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return onboardCmd(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func onboardCmd(force bool) error {
	path := internal.GetConfigPath()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	fmt.Printf("✓ Config written to %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add your groups and users to allow.groups / allow.users")
	fmt.Println("  2. Run `beatclaw auth` if your gateway requires an access token")
	fmt.Println("  3. Run `beatclaw gateway` to connect")
	return nil
}

package auth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/pkg/auth"
	"github.com/tinyland-inc/beatclaw/pkg/config"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store the OneBot gateway access token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return authCmd()
		},
	}

	return cmd
}

func authCmd() error {
	token, err := auth.PasteToken(os.Stdin)
	if err != nil {
		return err
	}

	path := internal.GetConfigPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	cfg.Gateway.AccessToken = token
	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Printf("✓ Access token saved to %s\n", path)
	return nil
}

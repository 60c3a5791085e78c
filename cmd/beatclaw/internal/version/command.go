package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
)

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("beatclaw %s\n", internal.FormatVersion())
			build, goVer := internal.FormatBuildInfo()
			if build != "" {
				fmt.Printf("  built:      %s\n", build)
			}
			fmt.Printf("  go version: %s\n", goVer)
		},
	}

	return cmd
}

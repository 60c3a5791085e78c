package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/pkg/migrate"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import data from legacy deployments",
		Example: `  beatclaw migrate bindings --file bindings.json
  beatclaw migrate bindings --file bindings.json --dry-run`,
	}

	var opts migrate.Options

	bindingsCmd := &cobra.Command{
		Use:   "bindings",
		Short: "Import a legacy JSON bindings file into the bindings store",
		Args:  cobra.NoArgs,
		Example: `  beatclaw migrate bindings --file bindings.json
  beatclaw migrate bindings --file bindings.json --force
  beatclaw migrate bindings --file bindings.json --db /tmp/bindings.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.DBPath == "" {
				cfg, err := internal.LoadConfig()
				if err != nil {
					return fmt.Errorf("error loading config: %w", err)
				}
				opts.DBPath = cfg.BindingsPath()
			}

			result, err := migrate.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Printf("Dry run: would import %d of %d bindings (%d skipped)\n",
					result.Imported, result.Total, result.Skipped)
				return nil
			}
			migrate.PrintSummary(result)
			return nil
		},
	}

	bindingsCmd.Flags().StringVar(&opts.File, "file", "",
		"Legacy JSON bindings file to import (required)")
	bindingsCmd.Flags().StringVar(&opts.DBPath, "db", "",
		"Bindings database path (default: the configured bindings.path)")
	bindingsCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false,
		"Report what would be imported without writing")
	bindingsCmd.Flags().BoolVar(&opts.Force, "force", false,
		"Overwrite bindings that already exist")
	_ = bindingsCmd.MarkFlagRequired("file")

	cmd.AddCommand(bindingsCmd)

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"issueapi/internal/config"
	"issueapi/internal/database/migration"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	List bool
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Long: `Create the database schema if it does not exist. The API server runs the
same migration at startup; this command lets it run ahead of a deploy.

Examples:
  issuectl migrate
  issuectl migrate --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.List, "list", false, "print the migration steps without connecting")

	return cmd
}

func runMigrate(cmd *cobra.Command, opts *MigrateOptions) error {
	if opts.List {
		for i, name := range migration.StepNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, name)
		}
		return nil
	}

	ctx := cmd.Context()
	cfg := config.Load()
	log := newLogger(cfg, opts.RootOptions, cmd.ErrOrStderr())
	defer log.Sync() //nolint:errcheck

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}

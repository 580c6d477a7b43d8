// Package cli implements issuectl, the operator command line for the issue
// service. Commands read the same environment as the API server.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for issuectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "issuectl",
		Short: "Operate the issue service",
		Long: `Maintenance commands for the issue service: schema migration, CSV export,
thumbnail backfill and development tokens. Configuration is read from the environment and an
optional .env file, exactly like the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewThumbnailsCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"issueapi/internal/export"
	"issueapi/internal/model"
	"issueapi/internal/service"
	"issueapi/internal/validation"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	Params validation.ListParams
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export issues as CSV",
		Long: `Export every issue matching the filters as CSV, in the same format as the
HTTP export endpoint. Without --output the file is named after the current
time; use --output - to write to stdout.

Examples:
  issuectl export
  issuectl export --status resolved --from 2024-01-01 --output resolved.csv
  issuectl export --category baches --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringVar(&opts.Params.Status, "status", "", "open, in_progress or resolved")
	cmd.Flags().StringVar(&opts.Params.Category, "category", "", "exact category")
	cmd.Flags().StringVarP(&opts.Params.Q, "query", "q", "", "text search")
	cmd.Flags().StringVar(&opts.Params.Order, "order", "new", "new, old, cat or status")
	cmd.Flags().StringVar(&opts.Params.From, "from", "", "YYYY-MM-DD, inclusive")
	cmd.Flags().StringVar(&opts.Params.To, "to", "", "YYYY-MM-DD, inclusive")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	q, err := validation.ParseListQuery(opts.Params)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	name := opts.Output
	if name == "" {
		name = export.Filename(time.Now())
	}

	var w io.Writer = cmd.OutOrStdout()
	if name != "-" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := writeCSV(ctx, e.svc, operator, q, w)
	if err != nil {
		if name != "-" {
			_ = os.Remove(name)
		}
		return err
	}
	if name != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d issues to %s\n", n, name)
	}
	return nil
}

// writeCSV streams the export of q into w and returns the number of rows.
func writeCSV(ctx context.Context, svc service.IssueService, actor model.Actor, q model.IssueQuery, w io.Writer) (int, error) {
	cw, err := export.NewCSV(w)
	if err != nil {
		return 0, err
	}
	if err := svc.Export(ctx, actor, q, cw.Write); err != nil {
		return 0, err
	}
	if err := cw.Flush(); err != nil {
		return 0, err
	}
	return cw.Rows(), nil
}

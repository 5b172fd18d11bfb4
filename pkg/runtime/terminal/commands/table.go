package commands

import (
	"fmt"
	"os"

	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/metric-atlas/pkg/services/dashboard"
	fileexport "github.com/de-tools/metric-atlas/pkg/services/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type TableCmd struct {
	pipeline *Pipeline
	limit    int
	output   string
}

func NewTableCmd(pipeline *Pipeline) *cobra.Command {
	tc := &TableCmd{pipeline: pipeline}
	cmd := &cobra.Command{
		Use:   "table FILE",
		Short: "Print the filtered rows, optionally exporting them to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE:  tc.run,
	}

	cmd.Flags().IntVar(&tc.limit, "limit", 50, "Maximum number of rows to print (0 prints all)")
	cmd.Flags().StringVarP(&tc.output, "export", "o", "", "Write the visible rows to this .csv or .xlsx file")

	return cmd
}

func (tc *TableCmd) run(cmd *cobra.Command, args []string) error {
	view, err := tc.pipeline.Run(cmd, args[0])
	if err != nil {
		return err
	}

	if tc.output != "" {
		if err := writeExport(tc.output, view); err != nil {
			return err
		}
		zerolog.Ctx(cmd.Context()).Info().
			Str("file", tc.output).
			Int("rows", len(view.Rows)).
			Msg("rows exported")
	}

	tw := export.NewTableWriter(cmd.OutOrStdout())
	tw.MaxRows = tc.limit
	return tw.Write(view.Columns, view.Rows, view.Mode, view.Verdicts)
}

func writeExport(path string, view dashboard.View) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return fileexport.Encode(f, fileexport.FormatForFilename(path), view.Columns, view.Rows)
}

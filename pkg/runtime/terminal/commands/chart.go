package commands

import (
	"fmt"
	"os"

	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ChartCmd struct {
	pipeline *Pipeline
	output   string
	kind     string
	width    int
	height   int
}

func NewChartCmd(pipeline *Pipeline) *cobra.Command {
	cc := &ChartCmd{pipeline: pipeline}
	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Draw the selected metric per period as a PNG or SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}

	cmd.Flags().StringVarP(&cc.output, "out", "o", "chart.png", "Output file (.png or .svg)")
	cmd.Flags().StringVar(&cc.kind, "type", "bar", "Chart type: bar or line")
	cmd.Flags().IntVar(&cc.width, "width", 0, "Image width in pixels (default scales with the number of periods)")
	cmd.Flags().IntVar(&cc.height, "height", 0, "Image height in pixels")

	return cmd
}

func (cc *ChartCmd) run(cmd *cobra.Command, args []string) (err error) {
	kind, err := export.ParseChartKind(cc.kind)
	if err != nil {
		return err
	}

	view, err := cc.pipeline.Run(cmd, args[0])
	if err != nil {
		return err
	}

	opts := export.ChartOptionsForFile(cc.output)
	opts.Kind = kind
	opts.Metric = view.Metric
	opts.Title = fmt.Sprintf("%s by %s", view.Metric, view.Mode)
	opts.Width = cc.width
	opts.Height = cc.height

	f, err := os.Create(cc.output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cc.output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", cc.output, cerr)
		}
	}()

	if err := export.RenderChart(f, view.Series, opts); err != nil {
		return err
	}

	zerolog.Ctx(cmd.Context()).Info().
		Str("file", cc.output).
		Str("metric", view.Metric).
		Int("points", view.Series.Len()).
		Msg("chart written")
	fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", cc.output)
	return nil
}

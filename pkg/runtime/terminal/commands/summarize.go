package commands

import (
	"fmt"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type SummarizeCmd struct {
	pipeline *Pipeline
	reporter *export.Reporter
}

func NewSummarizeCmd(pipeline *Pipeline, reporter *export.Reporter) *cobra.Command {
	sc := &SummarizeCmd{pipeline: pipeline, reporter: reporter}
	return &cobra.Command{
		Use:   "summarize FILE",
		Short: "Sum the selected metric per period",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}
}

func (sc *SummarizeCmd) run(cmd *cobra.Command, args []string) error {
	view, err := sc.pipeline.Run(cmd, args[0])
	if err != nil {
		return err
	}

	section := domain.ReportSection{
		Title: "Periods",
		Summary: map[string]interface{}{
			"periods": view.Series.Len(),
			"rows":    len(view.Filtered),
		},
	}
	for i, label := range view.Series.Labels {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:  label,
			Value: view.Series.Values[i],
			Unit:  view.Metric,
		})
	}

	return sc.reporter.Handle(&domain.Report{
		Title:    fmt.Sprintf("%s by %s", view.Metric, view.Mode),
		Dataset:  view.DatasetName,
		Mode:     view.Mode,
		Metric:   view.Metric,
		Total:    view.Total,
		Sections: []domain.ReportSection{section},
	})
}

package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type MetaCmd struct {
	pipeline *Pipeline
	reporter *export.Reporter
}

func NewMetaCmd(pipeline *Pipeline, reporter *export.Reporter) *cobra.Command {
	mc := &MetaCmd{pipeline: pipeline, reporter: reporter}
	return &cobra.Command{
		Use:   "meta FILE",
		Short: "List the accounts, years, periods and numeric columns of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  mc.run,
	}
}

func (mc *MetaCmd) run(cmd *cobra.Command, args []string) error {
	view, err := mc.pipeline.Run(cmd, args[0])
	if err != nil {
		return err
	}

	report := &domain.Report{
		Title:   "Dataset metadata",
		Dataset: view.DatasetName,
		Mode:    view.Mode,
		Sections: []domain.ReportSection{
			{
				Title: "Rows",
				Summary: map[string]interface{}{
					"total":    view.TotalRows,
					"filtered": len(view.Filtered),
					"columns":  len(view.Columns),
				},
			},
			listSection("Accounts", view.Accounts, ""),
			listSection("Years", view.Years, ""),
			listSection("Periods", view.Periods, string(view.Mode)),
			listSection("Numeric columns", view.NumericColumns, ""),
		},
	}
	if len(view.CalcColumns) > 0 {
		calc := domain.ReportSection{
			Title:   "Calculated columns",
			Summary: map[string]interface{}{"count": len(view.CalcColumns)},
		}
		for _, c := range view.CalcColumns {
			calc.Details = append(calc.Details, domain.ReportDetail{Name: c.Name, Description: c.Formula})
		}
		report.Sections = append(report.Sections, calc)
	}

	return mc.reporter.Handle(report)
}

func listSection(title string, values []string, unit string) domain.ReportSection {
	section := domain.ReportSection{
		Title:   title,
		Summary: map[string]interface{}{"count": len(values)},
	}
	if len(values) > 0 {
		section.Summary["values"] = strings.Join(values, ", ")
	}
	for i, v := range values {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:  v,
			Value: fmt.Sprint(i + 1),
			Unit:  unit,
		})
	}
	return section
}

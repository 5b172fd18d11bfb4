package commands

import (
	"errors"
	"fmt"
	"slices"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// ErrTwoPeriods is returned when compare runs without exactly two selected periods.
var ErrTwoPeriods = errors.New("compare needs exactly two periods, e.g. --periods \"WK 1,WK 2\"")

type CompareCmd struct {
	pipeline *Pipeline
	reporter *export.Reporter
	limit    int
}

func NewCompareCmd(pipeline *Pipeline, reporter *export.Reporter) *cobra.Command {
	cc := &CompareCmd{pipeline: pipeline, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "compare FILE",
		Short: "Compare watched metrics between two periods for every account",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}

	cmd.Flags().IntVar(&cc.limit, "limit", 50, "Maximum number of table rows to print (0 prints all)")

	return cmd
}

func (cc *CompareCmd) run(cmd *cobra.Command, args []string) error {
	view, err := cc.pipeline.Run(cmd, args[0])
	if err != nil {
		return err
	}
	if len(view.Selection.Periods) != 2 {
		return ErrTwoPeriods
	}
	baseline, current := view.Selection.Periods[0], view.Selection.Periods[1]

	report := &domain.Report{
		Title:   fmt.Sprintf("%s vs %s", current, baseline),
		Dataset: view.DatasetName,
		Mode:    view.Mode,
	}

	accounts := make([]string, 0, len(view.Verdicts))
	for account := range view.Verdicts {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)

	for _, account := range accounts {
		section := domain.ReportSection{Title: account, Summary: map[string]interface{}{}}
		counts := map[domain.Verdict]int{}
		for _, metric := range view.Watched {
			v, ok := view.Verdicts.Lookup(account, current, metric)
			if !ok {
				continue
			}
			counts[v]++
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        metric,
				Value:       string(v),
				Description: fmt.Sprintf("%s -> %s", baseline, current),
			})
		}
		for _, v := range []domain.Verdict{domain.VerdictBetter, domain.VerdictWorse, domain.VerdictSame} {
			section.Summary[string(v)] = counts[v]
		}
		report.Sections = append(report.Sections, section)
	}

	if err := cc.reporter.Handle(report); err != nil {
		return err
	}

	tw := export.NewTableWriter(cmd.OutOrStdout())
	tw.MaxRows = cc.limit
	return tw.Write(view.Columns, view.Rows, view.Mode, view.Verdicts)
}

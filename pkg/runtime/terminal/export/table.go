package export

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/compare"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	betterStyle = cellStyle.Foreground(lipgloss.Color("#16a34a"))
	worseStyle  = cellStyle.Foreground(lipgloss.Color("#dc2626"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TableWriter renders rows as a bordered terminal table. Cells whose verdict is better
// or worse are colored green or red.
type TableWriter struct {
	writer io.Writer
	// MaxRows limits the printed rows; zero prints all.
	MaxRows int
}

func NewTableWriter(writer io.Writer) *TableWriter {
	if writer == nil {
		writer = os.Stdout
	}
	return &TableWriter{writer: writer}
}

// Write renders columns of rows. mode selects the period column used to look up verdicts.
func (tw *TableWriter) Write(columns []string, rows []domain.Row, mode domain.PeriodMode, verdicts domain.VerdictMap) error {
	shown := rows
	if tw.MaxRows > 0 && len(shown) > tw.MaxRows {
		shown = shown[:tw.MaxRows]
	}

	data := make([][]string, len(shown))
	classes := make([][]string, len(shown))
	for i, row := range shown {
		data[i] = make([]string, len(columns))
		classes[i] = make([]string, len(columns))
		account := row.Field(domain.FieldAccounts)
		period := row.Field(mode.Field())
		for j, col := range columns {
			data[i][j] = row.Get(col).String()
			classes[i][j] = compare.CellClass(verdicts, account, period, col)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(columns...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(classes) || col >= len(classes[row]) {
				return cellStyle
			}
			switch classes[row][col] {
			case compare.ClassBetter:
				return betterStyle
			case compare.ClassWorse:
				return worseStyle
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(tw.writer, t.Render()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if len(shown) < len(rows) {
		msg := fmt.Sprintf("showing %d of %d rows", len(shown), len(rows))
		if _, err := fmt.Fprintln(tw.writer, mutedStyle.Render(msg)); err != nil {
			return fmt.Errorf("failed to write table footer: %w", err)
		}
	}
	return nil
}

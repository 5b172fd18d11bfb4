// Package export writes the visible table rows to a downloadable document.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/metadata"
	"github.com/xuri/excelize/v2"
)

// Format is an export document type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	DefaultFilename = "export.csv"
	sheetName       = "Data"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// FormatForFilename picks the format from the file extension; anything but .xlsx is CSV.
func FormatForFilename(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the suggested download name for the format.
func (f Format) Filename() string {
	if f == FormatXLSX {
		return "export.xlsx"
	}
	return DefaultFilename
}

// Encode writes a header row followed by one line per row. When columns is empty the
// header is the union of row keys in first-seen order. Absent cells are written empty.
func Encode(w io.Writer, format Format, columns []string, rows []domain.Row) error {
	if len(columns) == 0 {
		columns = metadata.Columns(rows)
	}

	switch format {
	case FormatCSV:
		return encodeCSV(w, columns, rows)
	case FormatXLSX:
		return encodeXLSX(w, columns, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func encodeCSV(w io.Writer, columns []string, rows []domain.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row.Get(col).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func encodeXLSX(w io.Writer, columns []string, rows []domain.Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range rows {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			cells[i] = cellValue(row.Get(col))
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, addr, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNumber:
		if n, ok := v.Float(); ok {
			return n
		}
		return nil
	case domain.KindText:
		return v.String()
	default:
		return nil
	}
}

// Package decoder turns uploaded spreadsheet documents into domain rows.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// ErrUnsupportedFormat is wrapped by DecodeError when no decoder handles the file.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoTable is wrapped by DecodeError when the document holds no sheet or header row.
var ErrNoTable = errors.New("no sheet or table found")

// DecodeError reports a document that could not be turned into rows.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads the document with the decoder registered for the file extension.
// On failure no rows are returned.
func Decode(ctx context.Context, reg Registry, filename string, r io.Reader) (domain.Dataset, error) {
	logger := zerolog.Ctx(ctx)

	dec, err := reg.Lookup(filename)
	if err != nil {
		return domain.Dataset{}, &DecodeError{File: filename, Err: err}
	}

	table, err := dec.Decode(ctx, r)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.File = filename
			return domain.Dataset{}, de
		}
		return domain.Dataset{}, &DecodeError{File: filename, Err: err}
	}

	ds, err := FromRecords(table.Headers, table.Records)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.File = filename
		}
		return domain.Dataset{}, err
	}
	ds.Name = filename

	logger.Debug().
		Str("file", filename).
		Int("rows", len(ds.Rows)).
		Int("columns", len(ds.Columns)).
		Msg("decoded dataset")

	return ds, nil
}

// FromRecords converts a header row and string records into a Dataset. Header cells are
// trimmed and blank headers become Column_<n>. Blank or missing cells become Absent.
func FromRecords(headers []string, records [][]string) (domain.Dataset, error) {
	if len(headers) == 0 {
		return domain.Dataset{}, &DecodeError{Err: ErrNoTable}
	}

	columns := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n)
		} else {
			seen[h] = 1
		}
		columns[i] = h
	}

	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		cells := make([]domain.Cell, len(columns))
		for i, col := range columns {
			v := domain.Absent()
			if i < len(rec) && strings.TrimSpace(rec[i]) != "" {
				v = domain.Text(rec[i])
			}
			cells[i] = domain.Cell{Key: col, Value: v}
		}
		rows = append(rows, domain.NewRow(cells...))
	}

	return domain.Dataset{Columns: columns, Rows: rows}, nil
}

func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

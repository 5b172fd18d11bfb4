package decoder

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type xlsxDecoder struct{}

// NewXLSXDecoder decodes the first worksheet of an Office Open XML workbook.
func NewXLSXDecoder() Decoder {
	return &xlsxDecoder{}
}

func (d *xlsxDecoder) Decode(ctx context.Context, r io.Reader) (*Table, error) {
	logger := zerolog.Ctx(ctx)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Err: ErrNoTable}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("%w: sheet %q is empty", ErrNoTable, sheets[0])}
	}

	return &Table{Headers: rows[0], Records: rows[1:]}, nil
}

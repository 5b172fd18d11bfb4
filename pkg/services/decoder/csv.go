package decoder

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

const utf8BOM = "\ufeff"

type csvDecoder struct {
	comma rune
}

// NewCSVDecoder decodes delimited text using comma as the field separator.
func NewCSVDecoder(comma rune) Decoder {
	return &csvDecoder{comma: comma}
}

func (d *csvDecoder) Decode(_ context.Context, r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = d.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited text: %w", err)
	}
	if len(rows) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("%w: empty document", ErrNoTable)}
	}

	return &Table{Headers: rows[0], Records: rows[1:]}, nil
}

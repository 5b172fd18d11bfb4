package decoder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecode_CSV(t *testing.T) {
	// Given
	doc := "\uFEFFAccounts,Year,Month,Spend\nAcme,2024,January,10.5\nAcme,2024,February,\n,,,\n"

	// When
	ds, err := Decode(context.Background(), NewDefaultRegistry(), "report.csv", strings.NewReader(doc))

	// Then
	require.NoError(t, err)
	assert.Equal(t, "report.csv", ds.Name)
	assert.Equal(t, []string{"Accounts", "Year", "Month", "Spend"}, ds.Columns)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, "Acme", ds.Rows[0].Field(domain.FieldAccounts))
	n, ok := ds.Rows[0].Get("Spend").Float()
	assert.True(t, ok)
	assert.Equal(t, 10.5, n)

	spend := ds.Rows[1].Get("Spend")
	assert.True(t, spend.IsAbsent())
	assert.Equal(t, []string{"Accounts", "Year", "Month", "Spend"}, ds.Rows[1].Keys())
}

func TestDecode_TSVWithShortRecord(t *testing.T) {
	doc := "Accounts\tYear\tClicks\nAcme\t2024\n"

	ds, err := Decode(context.Background(), NewDefaultRegistry(), "report.TSV", strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "2024", ds.Rows[0].Field(domain.FieldYear))
	assert.True(t, ds.Rows[0].Get("Clicks").IsAbsent())
}

func TestDecode_XLSX(t *testing.T) {
	// Given
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Accounts", "Week", "Sales"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Acme", "WK 1", 120}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Beta", "WK 2", 80}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// When
	ds, err := Decode(context.Background(), NewDefaultRegistry(), "upload.xlsx", bytes.NewReader(buf.Bytes()))

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"Accounts", "Week", "Sales"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "Beta", ds.Rows[1].Field(domain.FieldAccounts))
	n, ok := ds.Rows[0].Get("Sales").Float()
	assert.True(t, ok)
	assert.Equal(t, 120.0, n)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode(context.Background(), NewDefaultRegistry(), "notes.pdf", strings.NewReader("x"))

	require.Error(t, err)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "notes.pdf", de.File)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_EmptyDocument(t *testing.T) {
	_, err := Decode(context.Background(), NewDefaultRegistry(), "empty.csv", strings.NewReader(""))

	assert.ErrorIs(t, err, ErrNoTable)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "empty.csv", de.File)
}

func TestDecode_CorruptWorkbook(t *testing.T) {
	_, err := Decode(context.Background(), NewDefaultRegistry(), "broken.xlsx", strings.NewReader("not a zip"))

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestDecode_DecoderFailureIsWrapped(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	require.NoError(t, reg.Register("dat", DecoderFunc(func(context.Context, io.Reader) (*Table, error) {
		return nil, boom
	})))

	_, err := Decode(context.Background(), reg, "x.dat", strings.NewReader(""))

	assert.ErrorIs(t, err, boom)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "x.dat", de.File)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	dec := NewCSVDecoder(';')

	require.NoError(t, reg.Register(".CSV", dec))
	assert.Error(t, reg.Register("csv", dec))
	assert.Error(t, reg.Register("", dec))
	assert.Error(t, reg.Register(".txt", nil))

	got, err := reg.Lookup("data.csv")
	require.NoError(t, err)
	assert.Same(t, dec, got)

	_, err = reg.Lookup("data")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, []string{".csv", ".tsv", ".xlsm", ".xlsx"}, NewDefaultRegistry().ListFormats())
}

func TestFromRecords(t *testing.T) {
	ds, err := FromRecords(
		[]string{" Accounts ", "", "Spend", "Spend"},
		[][]string{
			{"Acme", "x", " ", "3", "extra"},
			{"", "  "},
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"Accounts", "Column_2", "Spend", "Spend_1"}, ds.Columns)
	require.Len(t, ds.Rows, 1)
	r := ds.Rows[0]
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, "x", r.Field("Column_2"))
	assert.True(t, r.Get("Spend").IsAbsent())
	assert.Equal(t, "3", r.Get("Spend_1").String())
}

func TestFromRecords_NoHeaders(t *testing.T) {
	_, err := FromRecords(nil, [][]string{{"a"}})
	assert.ErrorIs(t, err, ErrNoTable)
}

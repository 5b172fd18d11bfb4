package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"  3.5 ", 3.5, true},
		{"-0.25", -0.25, true},
		{"1e3", 1000, true},
		{".5", 0.5, true},
		{"", 0, true},
		{"   ", 0, true},
		{"0x1F", 31, true},
		{"0b101", 5, true},
		{"Infinity", math.Inf(1), true},
		{"-Infinity", math.Inf(-1), true},
		{"1,234", 0, false},
		{"$12", 0, false},
		{"12%", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"1_000", 0, false},
		{"0x1p3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValue_Coerce(t *testing.T) {
	assert.Equal(t, 12.5, Text("12.5").Coerce())
	assert.Equal(t, 0.0, Text("n/a").Coerce())
	assert.Equal(t, 0.0, Absent().Coerce())
	assert.Equal(t, 0.0, Number(math.NaN()).Coerce())
	assert.Equal(t, 7.0, Number(7).Coerce())
}

func TestValue_FloatAbsentIsNotNumeric(t *testing.T) {
	_, ok := Absent().Float()
	assert.False(t, ok)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Absent().String())
	assert.Equal(t, "WK 01", Text("WK 01").String())
	assert.Equal(t, "0.1", Number(0.1).String())
	assert.Equal(t, "150", Number(150).String())
	assert.Equal(t, "1e+21", Number(1e21).String())
}

func TestValue_JSON(t *testing.T) {
	row := NewRow(
		Cell{Key: "Accounts", Value: Text("A")},
		Cell{Key: "Spend", Value: Number(12.5)},
		Cell{Key: "Ratio", Value: Absent()},
	)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"Accounts":"A","Spend":12.5,"Ratio":null}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"x"`), &v))
	assert.Equal(t, Text("x"), v)
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.True(t, v.IsAbsent())
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
}

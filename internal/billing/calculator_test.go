package billing

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name                          string
		price, start, end, correction string
		want                          string
	}{
		{name: "meter a", price: "2.5", start: "100", end: "150", correction: "5", want: "112.5"},
		{name: "no correction", price: "1", start: "0", end: "10", correction: "0", want: "10"},
		{name: "zero total", price: "3", start: "10", end: "15", correction: "5", want: "0"},
		{name: "end below start", price: "2", start: "150", end: "100", correction: "0", want: "-100"},
		{name: "correction above delta", price: "1.25", start: "0", end: "4", correction: "8", want: "-5"},
		{name: "fractional", price: "0.1", start: "0.2", end: "0.5", correction: "0.1", want: "0.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(dec(tt.price), dec(tt.start), dec(tt.end), dec(tt.correction))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestReadingTotalMatchesFormula(t *testing.T) {
	r := Reading{
		UnitPrice:  dec("1.75"),
		StartIndex: dec("1200.5"),
		EndIndex:   dec("1350.25"),
		Correction: dec("12"),
	}

	want := r.UnitPrice.Mul(r.EndIndex.Sub(r.StartIndex).Sub(r.Correction))
	assert.True(t, want.Equal(r.Total()))
	assert.Equal(t, "149.75", r.IndexDelta().String())
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(FieldUnitPrice, " 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	d, err = ParseAmount(FieldUnitPrice, "2,75")
	require.NoError(t, err)
	assert.Equal(t, "2.75", d.String())

	d, err = ParseAmount(FieldCorrection, "-3")
	require.NoError(t, err)
	assert.Equal(t, "-3", d.String())
}

func TestParseAmountRejectsNonNumbers(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "1.2.3", "1,2,3", "12kWh"} {
		_, err := ParseAmount(FieldStartIndex, raw)

		var inputErr *InvalidInputError
		require.True(t, errors.As(err, &inputErr), "expected InvalidInputError for %q", raw)
		assert.Equal(t, FieldStartIndex, inputErr.Field)
		assert.Equal(t, raw, inputErr.Value)
	}
}

func TestParseReading(t *testing.T) {
	r, err := ParseReading("Meter-A", "2.5", "100", "150", "5")
	require.NoError(t, err)
	assert.Equal(t, "Meter-A", r.Name)
	assert.Equal(t, "112.5", r.Total().String())
}

func TestParseReadingReportsFirstBadField(t *testing.T) {
	_, err := ParseReading("Meter-A", "2.5", "x", "y", "5")

	var inputErr *InvalidInputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, FieldStartIndex, inputErr.Field)
	assert.Contains(t, err.Error(), "start_index")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "112.50", FormatAmount(dec("112.5")))
	assert.Equal(t, "0.33", FormatAmount(dec("1").Div(dec("3"))))
	assert.Equal(t, "-5.00", FormatAmount(dec("-5")))
	assert.Equal(t, "total amount for Meter-B: 10.00", Summary("Meter-B", dec("10")))
}

func TestParseAmountRejectsUnstorableNumbers(t *testing.T) {
	for _, raw := range []string{"1e400", "-1e400", "1e-400"} {
		_, err := ParseAmount(FieldUnitPrice, raw)
		require.ErrorIs(t, err, ErrOutOfRange, raw)

		var inputErr *InvalidInputError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, raw, inputErr.Value)
	}

	d, err := ParseAmount(FieldUnitPrice, "0e400")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseAmount(FieldUnitPrice, "1e300")
	require.NoError(t, err)
	assert.Equal(t, 1e300, d.InexactFloat64())
}

func TestFromFloat(t *testing.T) {
	d, err := FromFloat(FieldEndIndex, 150.25)
	require.NoError(t, err)
	assert.Equal(t, "150.25", d.String())

	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := FromFloat(FieldEndIndex, f)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestReadingFromFloats(t *testing.T) {
	r, err := ReadingFromFloats("Meter-A", 2.5, 100, 150, 5)
	require.NoError(t, err)
	assert.Equal(t, "112.5", r.Total().String())

	_, err = ReadingFromFloats("Meter-A", 2.5, 100, math.Inf(1), 5)
	var inputErr *InvalidInputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, FieldEndIndex, inputErr.Field)
}

func TestReadingValidate(t *testing.T) {
	r := Reading{
		Name:       "Meter-A",
		UnitPrice:  dec("2.5"),
		StartIndex: dec("100"),
		EndIndex:   dec("150"),
		Correction: dec("5"),
	}
	assert.NoError(t, r.Validate())

	r.Correction = decimal.New(1, -400)
	err := r.Validate()
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), FieldCorrection)
}

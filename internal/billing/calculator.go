// Package billing turns meter readings into billed amounts.
package billing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Reading holds the parsed inputs of one billing calculation.
type Reading struct {
	Name       string
	UnitPrice  decimal.Decimal
	StartIndex decimal.Decimal
	EndIndex   decimal.Decimal
	Correction decimal.Decimal
}

// ComputeTotal returns unitPrice * ((endIndex - startIndex) - correction).
// Nothing is rounded and negative results are returned as-is.
func ComputeTotal(unitPrice, startIndex, endIndex, correction decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(endIndex.Sub(startIndex).Sub(correction))
}

func (r Reading) Total() decimal.Decimal {
	return ComputeTotal(r.UnitPrice, r.StartIndex, r.EndIndex, r.Correction)
}

func (r Reading) IndexDelta() decimal.Decimal {
	return r.EndIndex.Sub(r.StartIndex)
}

// ParseAmount parses a numeric form field. A single comma is accepted
// as the decimal separator when no dot is present.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw}
	}
	if !strings.Contains(value, ".") && strings.Count(value, ",") == 1 {
		value = strings.Replace(value, ",", ".", 1)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Err: err}
	}
	if !storable(d) {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Err: ErrOutOfRange}
	}
	return d, nil
}

// Validate reports the first amount of r that cannot be stored as a
// finite REAL.
func (r Reading) Validate() error {
	fields := []struct {
		name string
		d    decimal.Decimal
	}{
		{FieldUnitPrice, r.UnitPrice},
		{FieldStartIndex, r.StartIndex},
		{FieldEndIndex, r.EndIndex},
		{FieldCorrection, r.Correction},
	}
	for _, f := range fields {
		if !storable(f.d) {
			return &InvalidInputError{Field: f.name, Value: f.d.String(), Err: ErrOutOfRange}
		}
	}
	return nil
}

// FromFloat converts a stored REAL back into a decimal. NaN and the
// infinities have no decimal form and are reported as invalid input.
func FromFloat(field string, f float64) (decimal.Decimal, error) {
	if !finite(f) {
		return decimal.Zero, &InvalidInputError{
			Field: field,
			Value: strconv.FormatFloat(f, 'g', -1, 64),
			Err:   ErrOutOfRange,
		}
	}
	return decimal.NewFromFloat(f), nil
}

// ReadingFromFloats rebuilds a reading from stored column values.
func ReadingFromFloats(name string, unitPrice, startIndex, endIndex, correction float64) (Reading, error) {
	r := Reading{Name: name}

	fields := []struct {
		name string
		raw  float64
		dst  *decimal.Decimal
	}{
		{FieldUnitPrice, unitPrice, &r.UnitPrice},
		{FieldStartIndex, startIndex, &r.StartIndex},
		{FieldEndIndex, endIndex, &r.EndIndex},
		{FieldCorrection, correction, &r.Correction},
	}
	for _, f := range fields {
		d, err := FromFloat(f.name, f.raw)
		if err != nil {
			return Reading{}, err
		}
		*f.dst = d
	}

	return r, nil
}

// storable is false for amounts that overflow a float64 or underflow
// to zero.
func storable(d decimal.Decimal) bool {
	f := d.InexactFloat64()
	return finite(f) && (f != 0 || d.IsZero())
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// ParseReading parses the four numeric fields of a reading form. The
// first field that fails is reported.
func ParseReading(name, unitPrice, startIndex, endIndex, correction string) (Reading, error) {
	r := Reading{Name: name}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{FieldUnitPrice, unitPrice, &r.UnitPrice},
		{FieldStartIndex, startIndex, &r.StartIndex},
		{FieldEndIndex, endIndex, &r.EndIndex},
		{FieldCorrection, correction, &r.Correction},
	}
	for _, f := range fields {
		d, err := ParseAmount(f.name, f.raw)
		if err != nil {
			return Reading{}, err
		}
		*f.dst = d
	}

	return r, nil
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Summary is the one-line result shown after a calculation.
func Summary(name string, total decimal.Decimal) string {
	return fmt.Sprintf("total amount for %s: %s", name, FormatAmount(total))
}

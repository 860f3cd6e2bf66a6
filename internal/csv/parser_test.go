package csv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

func TestDecodeReadings(t *testing.T) {
	input := "Name, Unit_Price, START_INDEX, End_Index, Correction\n" +
		"Meter-A, 2.5, 100, 150, 5\n" +
		"Meter-B,\"1,5\",0,10,\n"

	readings, err := DecodeReadings(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "Meter-A", readings[0].Name)
	assert.Equal(t, "112.5", readings[0].Total().String())

	assert.Equal(t, "Meter-B", readings[1].Name)
	assert.Equal(t, "1.5", readings[1].UnitPrice.String())
	assert.True(t, readings[1].Correction.IsZero())
	assert.Equal(t, "15", readings[1].Total().String())
}

func TestDecodeReadingsReportsLine(t *testing.T) {
	input := "name,unit_price,start_index,end_index,correction\n" +
		"Meter-A,2.5,100,150,5\n" +
		"Meter-B,1,zero,10,0\n"

	_, err := DecodeReadings(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	var inputErr *billing.InvalidInputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, billing.FieldStartIndex, inputErr.Field)
}

func TestDecodeReadingsEmptyFile(t *testing.T) {
	_, err := DecodeReadings(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParserReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,unit_price,start_index,end_index,correction\nMeter-A,1,0,10,0\n"), 0644))

	readings, err := NewParser(path).ParseReadings()
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "10", readings[0].Total().String())

	_, err = NewParser(filepath.Join(t.TempDir(), "missing.csv")).ParseReadings()
	require.Error(t, err)
}

func TestWriteRecords(t *testing.T) {
	records := []models.CustomerRecord{
		{
			ID:         1,
			Name:       "Meter-A",
			UnitPrice:  decimal.RequireFromString("2.5"),
			StartIndex: decimal.RequireFromString("100"),
			EndIndex:   decimal.RequireFromString("150"),
			Correction: decimal.RequireFromString("5"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "no,name,unit_price,start_index,end_index,correction,index_delta,total_amount", lines[0])
	assert.Equal(t, "1,Meter-A,2.5,100,150,5,50,112.50", lines[1])

	readings, err := DecodeReadings(&buf)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "112.5", readings[0].Total().String())
}

func TestWriteRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Equal(t, "no,name,unit_price,start_index,end_index,correction,index_delta,total_amount\n", buf.String())
}

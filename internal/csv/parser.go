package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

// ParseReadings decodes every row of the file into a parsed reading.
// Header names are matched case-insensitively.
func (p *Parser) ParseReadings() ([]billing.Reading, error) {
	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return DecodeReadings(file)
}

func DecodeReadings(r io.Reader) ([]billing.Reading, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	decoder, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var rows []models.ReadingCSV
	if err := decoder.Decode(&rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	readings := make([]billing.Reading, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Correction) == "" {
			row.Correction = "0"
		}
		reading, err := billing.ParseReading(strings.TrimSpace(row.Name), row.UnitPrice, row.StartIndex, row.EndIndex, row.Correction)
		if err != nil {
			// +2: one for the header, one for 1-based lines.
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// WriteRecords exports the listing, including the derived columns.
func WriteRecords(w io.Writer, records []models.CustomerRecord) error {
	rows := make([]models.ReadingCSV, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.ReadingCSV{
			No:          rec.ID,
			Name:        rec.Name,
			UnitPrice:   rec.UnitPrice.String(),
			StartIndex:  rec.StartIndex.String(),
			EndIndex:    rec.EndIndex.String(),
			Correction:  rec.Correction.String(),
			IndexDelta:  rec.IndexDelta().String(),
			TotalAmount: billing.FormatAmount(ledger.Total(rec)),
		})
	}

	writer := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(writer)
	if len(rows) == 0 {
		if err := encoder.EncodeHeader(models.ReadingCSV{}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to encode CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

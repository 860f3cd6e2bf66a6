package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/csv"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

var (
	csvFile   string
	overwrite bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import readings from a CSV file",
	Long: `Import readings from a CSV file with the columns
name, unit_price, start_index, end_index, correction.
Existing customers are only updated when --overwrite is given.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&csvFile, "csv", "f", "", "CSV file to import (required)")
	importCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite customers that already exist")

	importCmd.MarkFlagRequired("csv")
}

// ImportResult counts what happened to each row of an import.
type ImportResult struct {
	Total     int
	Inserted  int
	Updated   int
	Cancelled int
}

func runImport(cmd *cobra.Command, args []string) error {
	parser := csv.NewParser(csvFile)
	readings, err := parser.ParseReadings()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	log.WithField("file", csvFile).Infof("parsed %d readings", len(readings))

	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	confirm := ledger.NeverOverwrite
	if overwrite {
		confirm = ledger.AlwaysOverwrite
	}

	result := ImportResult{Total: len(readings)}
	for i, reading := range readings {
		if strings.TrimSpace(reading.Name) == "" {
			log.Warnf("record %d has an empty name", i+1)
		}

		outcome, err := l.Upsert(ctx, reading, confirm)
		if err != nil {
			return fmt.Errorf("failed to save record %d (%s): %w", i+1, reading.Name, err)
		}
		switch outcome {
		case ledger.Inserted:
			result.Inserted++
		case ledger.Updated:
			result.Updated++
		case ledger.Cancelled:
			result.Cancelled++
		}
	}

	printf(cmd, "Imported %d readings: %d new, %d updated, %d skipped (already present)\n",
		result.Total, result.Inserted, result.Updated, result.Cancelled)
	return nil
}

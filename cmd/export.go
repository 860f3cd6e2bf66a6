package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/csv"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all customers to a CSV file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output CSV file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	records, err := l.ListAll(ctx)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportFile, err)
		}
		defer f.Close()
		out = f
	}

	if err := csv.WriteRecords(out, records); err != nil {
		return err
	}

	if exportFile != "" {
		log.WithField("file", exportFile).Infof("exported %d customers", len(records))
	}
	return nil
}

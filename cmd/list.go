package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/csv"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

var listAsCSV bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers with their billed amount",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAsCSV, "csv", false, "Print the listing as CSV")
}

func runList(cmd *cobra.Command, args []string) error {
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

	if listAsCSV {
		return csv.WriteRecords(cmd.OutOrStdout(), records)
	}

	if len(records) == 0 {
		printf(cmd, "No customers recorded yet\n")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), recordTable(records).Render())
	return nil
}

var listHeaders = []string{"No", "Meter Name", "Unit Price (TL/kWh)", "Start Index", "End Index", "Index Delta", "Correction", "Total Amount (TL)"}

func recordRow(rec models.CustomerRecord) []string {
	return []string{
		strconv.Itoa(rec.ID),
		rec.Name,
		rec.UnitPrice.String(),
		rec.StartIndex.String(),
		rec.EndIndex.String(),
		rec.IndexDelta().String(),
		rec.Correction.String(),
		billing.FormatAmount(ledger.Total(rec)),
	}
}

func recordTable(records []models.CustomerRecord) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(listHeaders...)
	for _, rec := range records {
		t.Row(recordRow(rec)...)
	}
	return t
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

var skipConfirmation bool

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a reading for a customer",
	Long: `Save a reading for a customer. When a customer with the same name
already exists you are asked whether to overwrite it.`,
	RunE: runSave,
}

func init() {
	addReadingFlags(saveCmd)
	saveCmd.Flags().BoolVarP(&skipConfirmation, "yes", "y", false, "Overwrite an existing customer without asking")
	saveCmd.MarkFlagRequired("price")
	saveCmd.MarkFlagRequired("start")
	saveCmd.MarkFlagRequired("end")
}

func runSave(cmd *cobra.Command, args []string) error {
	reading, err := parseReadingFlags()
	if err != nil {
		return err
	}
	if strings.TrimSpace(reading.Name) == "" {
		log.Warn("saving a reading without a customer name")
	}

	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	confirm := ledger.AlwaysOverwrite
	if !skipConfirmation {
		confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	outcome, err := l.Upsert(ctx, reading, confirm)
	if err != nil {
		return err
	}

	switch outcome {
	case ledger.Cancelled:
		printf(cmd, "Not saved: %s was left unchanged\n", reading.Name)
	default:
		printf(cmd, "Saved (%s). %s\n", outcome, billing.Summary(reading.Name, reading.Total()))
	}
	return nil
}

func promptConfirmer(in io.Reader, out io.Writer) ledger.Confirmer {
	reader := bufio.NewReader(in)
	return ledger.ConfirmFunc(func(ctx context.Context, existing models.CustomerRecord) (bool, error) {
		msg := fmt.Sprintf("A customer named %q already exists (no %d). Do you want to update it?", existing.Name, existing.ID)
		return confirmAction(reader, out, msg), nil
	})
}

func confirmAction(reader *bufio.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s (y/N): ", message)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

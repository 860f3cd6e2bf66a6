package cmd

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete customers by their number in the listing",
	Long: `Delete customers by the number shown in the listing. The remaining
customers are renumbered 1..N afterwards.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&skipConfirmation, "yes", "y", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ledger.ErrNoSelection
	}

	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid customer number %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	if !skipConfirmation {
		reader := bufio.NewReader(cmd.InOrStdin())
		msg := fmt.Sprintf("Delete %d selected customer(s)?", len(ids))
		if !confirmAction(reader, cmd.OutOrStdout(), msg) {
			printf(cmd, "Delete cancelled\n")
			return nil
		}
	}

	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	deleted, err := l.Delete(ctx, ids)
	if err != nil {
		return err
	}

	printf(cmd, "Deleted %d customer(s)\n", deleted)
	return nil
}

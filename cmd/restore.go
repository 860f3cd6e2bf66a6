package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/backup"
)

var (
	inputFile       string
	restoreFormat   string
	replaceExisting bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the customer ledger from a backup",
	Long: `Restore customers from a BSON or JSON backup file. Customers with
the same name are overwritten; --replace empties the ledger first.`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input backup file to restore (required)")
	restoreCmd.Flags().StringVarP(&restoreFormat, "format", "f", "", "Backup format: bson or json (auto-detected if not specified)")
	restoreCmd.Flags().BoolVar(&replaceExisting, "replace", false, "Delete all customers before restoring")
	restoreCmd.Flags().BoolVarP(&skipConfirmation, "yes", "y", false, "Skip confirmation prompts")

	restoreCmd.MarkFlagRequired("input")
}

func runRestore(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", inputFile)
	}

	format := restoreFormat
	if format == "" {
		var err error
		if format, err = backup.FormatFromExtension(inputFile); err != nil {
			return err
		}
	}

	if !skipConfirmation {
		printf(cmd, "About to restore:\n")
		printf(cmd, "  Source file: %s\n", inputFile)
		printf(cmd, "  Target database: %s\n", cfg.Database.Path)
		printf(cmd, "  Format: %s\n", format)
		if replaceExisting {
			printf(cmd, "  WARNING: all existing customers will be DELETED!\n")
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		if !confirmAction(reader, cmd.OutOrStdout(), "Do you want to continue?") {
			printf(cmd, "Restore cancelled\n")
			return nil
		}
	}

	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	backupService := backup.NewService(l, log)

	if err := backupService.ValidateBackupFile(inputFile, format); err != nil {
		return fmt.Errorf("backup file validation failed: %w", err)
	}

	count, err := backupService.Restore(ctx, inputFile, format, replaceExisting)
	if err != nil {
		return err
	}

	printf(cmd, "Restored %d customers from %s\n", count, inputFile)
	return nil
}

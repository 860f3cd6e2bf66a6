package cmd

import (
	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/backup"
)

var (
	outputDir    string
	backupFormat string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup the customer ledger",
	Long:  "Backup the customer ledger to a BSON or JSON file",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&outputDir, "output", "o", "./backups", "Output directory for backup files")
	backupCmd.Flags().StringVarP(&backupFormat, "format", "f", backup.FormatJSON, "Backup format: bson or json")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := backup.NewService(l, log).Backup(ctx, outputDir, backupFormat)
	if err != nil {
		return err
	}

	printf(cmd, "Backed up %d customers to %s\n", result.Count, result.FilePath)
	return nil
}

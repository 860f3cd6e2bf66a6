package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/config"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/database"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/logger"
)

var (
	cfg    = config.Load()
	log    = logger.New("info", "text")
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "meterledger",
	Short: "Record electricity meter readings and bill customers",
	Long: `Meter Ledger records electricity meter readings per customer,
computes the billed amount from unit price and index readings and keeps
the customers in a local SQLite database.

Running it without a command starts the interactive TUI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		entry := log.WithError(err)
		if ledger.IsPersistence(err) {
			entry = entry.WithField("db", cfg.Database.Path)
		}
		entry.Error("command failed")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (default $LEDGER_DB_PATH or readings.db)")
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

func initConfig() {
	envErr := godotenv.Load()

	cfg = config.Load()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	log = logger.New(cfg.Log.Level, cfg.Log.Format)

	if envErr != nil {
		log.WithError(envErr).Debug("no .env file loaded")
	}
}

// openLedger opens the database and makes sure the schema exists. The
// returned func closes the database.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, &ledger.PersistenceError{Op: "open", Err: err}
	}

	log.WithField("path", db.Path()).Debug("using ledger database")
	l := ledger.New(db.DB, log)
	if err := l.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
	return l, closeFn, nil
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

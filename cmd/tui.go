package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/logger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive TUI (same as default)",
	Long: `Start the Terminal User Interface for recording readings and
managing customers.

Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	logFile, err := logger.ToFile(log, cfg.Log.File)
	if err != nil {
		log.WithError(err).Warn("cannot open log file, logging to stderr")
	} else {
		defer logFile.Close()
	}

	ctx := cmd.Context()
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	p := tea.NewProgram(
		tui.NewModel(l),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

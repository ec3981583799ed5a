package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/usecase/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Browse committed return records in a terminal console",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := console.NewReturnsModel(cmd.Context(), app.Report, console.Options{
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run returns console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/usecase/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the summary workbook",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		out, _ := cmd.Flags().GetString("out")
		if strings.TrimSpace(out) == "" {
			out = app.Config.Report.Path
		}

		err := app.Report.Generate(cmd.Context(), out)
		if errors.Is(err, report.ErrEmptyReport) {
			_, werr := fmt.Fprintln(cmd.OutOrStdout(), "no return records yet; report not written")
			return werr
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "report written: %s\n", out)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("out", "", "Output path (defaults to report.path)")
}

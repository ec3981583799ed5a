package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/errs"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the configured export into an empty store",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		if !app.Seed.Enabled() {
			return errors.New("seed.source is not configured")
		}

		result, err := app.Seed.SeedIfEmpty(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "seed store")
		}

		out := cmd.OutOrStdout()
		if result.AlreadySeeded {
			_, err = fmt.Fprintln(out, "store already holds records; nothing loaded")
			return err
		}
		_, err = fmt.Fprintf(out, "loaded %d records, skipped %d\n", result.Loaded, result.Skipped)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/bootstrap/logging"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}

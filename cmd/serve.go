package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/errs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP intake and report server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		if app.Seed.Enabled() {
			if _, err := app.Seed.SeedIfEmpty(ctx); err != nil {
				logging.Warn(ctx, "startup seed failed, serving existing records", slog.Any("err", errs.Loggable(err)))
			}
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           newReturnsHandler(ctx, app.Intake, app.Report, app.Config.Server.RequestTimeout),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- server.ListenAndServe()
		}()
		logging.Info(ctx, "returns server started", slog.String("addr", addr))

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "returns server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve returns api")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown returns server")
		}
		logging.Info(ctx, "returns server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}

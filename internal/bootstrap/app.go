package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/infrastructure/persistence/sqlite/model"
	"returnsdesk/internal/usecase/intake"
	"returnsdesk/internal/usecase/report"
	"returnsdesk/internal/usecase/seed"
)

// App bundles the wired services a command needs.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Intake *intake.Service
	Seed   *seed.Service
	Report *report.Service
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Debug(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Debug(logCtx, "schema migration completed")
	return nil
}

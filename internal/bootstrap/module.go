package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/bootstrap/database"
	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/errs"
	cacheinfra "returnsdesk/internal/infrastructure/cache"
	extractioninfra "returnsdesk/internal/infrastructure/extraction"
	sqliterepo "returnsdesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "returnsdesk/internal/infrastructure/persistence/sqlite/uow"
	"returnsdesk/internal/infrastructure/reportfile"
	seedinfra "returnsdesk/internal/infrastructure/seed"
	"returnsdesk/internal/ports"
	"returnsdesk/internal/usecase/extraction"
	"returnsdesk/internal/usecase/intake"
	"returnsdesk/internal/usecase/report"
	"returnsdesk/internal/usecase/seed"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewReturnRepository,
			fx.As(new(ports.ReturnRepository)),
			fx.As(new(ports.ReturnReadRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideExtractionClient),
	fx.Provide(provideExtractionAdapter),
	fx.Provide(provideSeedSource),
	fx.Provide(
		fx.Annotate(
			reportfile.NewXLSXWriter,
			fx.As(new(ports.ReportWriter)),
		),
	),
	fx.Provide(provideIntakeService),
	fx.Provide(seed.NewService),
	fx.Provide(provideReportService),
	fx.Provide(provideApp),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

// provideExtractionClient falls back to the disabled client when the
// configured provider cannot be built, so form intake and reporting still
// start without credentials.
func provideExtractionClient(ctx context.Context, cfg config.Config) ports.ExtractionClient {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	client, err := extractioninfra.NewClient(ctx, cfg.Extraction)
	if err != nil {
		logging.Warn(logCtx, "extraction client unavailable, natural-language intake disabled",
			slog.String("provider", cfg.Extraction.Provider),
			slog.Any("err", errs.Loggable(err)),
		)
		return extractioninfra.DisabledClient{}
	}
	logging.Debug(logCtx, "extraction client ready", slog.String("provider", client.Name()))
	return client
}

func provideExtractionAdapter(client ports.ExtractionClient, cache ports.Cache, cfg config.Config) *extraction.Adapter {
	return extraction.NewAdapter(client, cache, cfg.Extraction)
}

func provideSeedSource(cfg config.Config) (ports.SeedSource, error) {
	return seedinfra.NewSource(cfg.Seed)
}

func provideIntakeService(repo ports.ReturnRepository, uow ports.UnitOfWork, adapter *extraction.Adapter, cfg config.Config) *intake.Service {
	return intake.NewService(repo, uow, adapter, cfg.Intake)
}

func provideReportService(repo ports.ReturnReadRepository, writer ports.ReportWriter, cfg config.Config) *report.Service {
	return report.NewService(repo, writer, cfg.Database.DSN)
}

func provideApp(cfg config.Config, db *gorm.DB, intakeSvc *intake.Service, seedSvc *seed.Service, reportSvc *report.Service) *App {
	return &App{
		Config: cfg,
		DB:     db,
		Intake: intakeSvc,
		Seed:   seedSvc,
		Report: reportSvc,
	}
}

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Intake     IntakeConfig     `mapstructure:"intake"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Seed       SeedConfig       `mapstructure:"seed"`
	Report     ReportConfig     `mapstructure:"report"`
	Server     ServerConfig     `mapstructure:"server"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type IntakeConfig struct {
	OrderIDBase          uint64 `mapstructure:"order_id_base"`
	MaxAllocationRetries int    `mapstructure:"max_allocation_retries"`
}

type ExtractionConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type SeedConfig struct {
	Source string `mapstructure:"source"`
	Sheet  string `mapstructure:"sheet"`
}

type ReportConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	cfg.Extraction.Provider = strings.ToLower(strings.TrimSpace(cfg.Extraction.Provider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("extraction_provider", cfg.Extraction.Provider),
	)
	return cfg, nil
}

// Validate checks the settings the intake engine cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Intake.OrderIDBase < 1 {
		return errors.New("intake.order_id_base must be >= 1")
	}
	if c.Intake.MaxAllocationRetries < 1 {
		return errors.New("intake.max_allocation_retries must be >= 1")
	}
	if c.Extraction.Timeout <= 0 {
		return errors.New("extraction.timeout must be positive")
	}
	switch c.Extraction.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unsupported extraction.provider %q", c.Extraction.Provider)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "returnsdesk")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/returns.sqlite")
	v.SetDefault("intake.order_id_base", 1)
	v.SetDefault("intake.max_allocation_retries", 3)
	v.SetDefault("extraction.provider", ProviderOpenAI)
	v.SetDefault("extraction.model", "")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.base_url", "")
	v.SetDefault("extraction.timeout", "30s")
	v.SetDefault("extraction.cache_ttl", "0s")
	v.SetDefault("seed.source", "")
	v.SetDefault("seed.sheet", "")
	v.SetDefault("report.path", "returns_summary.xlsx")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "60s")
}

// Package bootstrap wires configuration into a ready analysis service.
// Both the HTTP server and the CLI start from here.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/bryanwahyu/truesight/internal/application"
	"github.com/bryanwahyu/truesight/internal/application/analysis"
	"github.com/bryanwahyu/truesight/internal/config"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/infra/ai/openai"
	"github.com/bryanwahyu/truesight/internal/infra/cache"
	"github.com/bryanwahyu/truesight/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/truesight/internal/infra/db/mysql"
	"github.com/bryanwahyu/truesight/internal/infra/db/postgres"
	"github.com/bryanwahyu/truesight/internal/infra/intake"
	minioStore "github.com/bryanwahyu/truesight/internal/infra/storage"
	"github.com/bryanwahyu/truesight/internal/logger"
	"github.com/bryanwahyu/truesight/internal/middleware"
)

// Options tweak how the app is assembled.
type Options struct {
	// MemoryStore ignores database.driver and keeps analyses in memory.
	MemoryStore bool
	// SkipObjectStore leaves exports local even when minio is enabled.
	SkipObjectStore bool
	// LogOutput overrides the logger destination (stdout by default).
	LogOutput io.Writer
	Metrics   *middleware.Metrics
}

// App holds the wired components.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Service *analysis.Service
	Metrics *middleware.Metrics
	Checks  map[string]middleware.HealthChecker

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: opts.LogOutput,
	})
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.Global()
	}
	app := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics,
		Checks:  map[string]middleware.HealthChecker{},
	}

	repo, err := app.openRepository(ctx, opts.MemoryStore)
	if err != nil {
		return nil, err
	}

	svc := &analysis.Service{
		Repo:    repo,
		Senders: intake.NewReputer(nil),
		Metrics: metrics,
		Clock:   application.SystemClock{},
		Log:     log.WithComponent("analysis"),
	}
	if cfg.AI.StrictConsistency {
		svc.Checks = append(svc.Checks, threat.ConsistentClassification)
	}

	if client := newModelClient(cfg.AI, log); client != nil {
		svc.AI = client
		svc.Cache = cache.NewResponseCache(cfg.AI.CacheTTL)
	} else {
		log.Info().Msg("no AI provider configured, using heuristic analysis only")
	}

	if cfg.Minio.Enabled && !opts.SkipObjectStore {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		svc.Exports = store
		app.Checks["object_storage"] = middleware.CheckerFunc(store.Ping)
	}

	app.Service = svc
	return app, nil
}

type pinger interface {
	threat.Repository
	Ping(ctx context.Context) error
}

func (a *App) openRepository(ctx context.Context, forceMemory bool) (threat.Repository, error) {
	cfg := a.Config
	driver := cfg.Database.Driver
	if forceMemory {
		driver = config.DriverMemory
	}

	var repo pinger
	switch driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql migrate: %w", err)
		}
		a.db = db
		repo = mysqlp.NewAnalysisRepository(db)
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		a.db = db
		repo = postgres.NewAnalysisRepository(db)
	case config.DriverMemory:
		repo = memory.NewAnalysisRepository()
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	if a.db != nil {
		a.Checks["database"] = &middleware.DatabaseHealthChecker{DB: a.db}
	} else {
		a.Checks["database"] = middleware.CheckerFunc(repo.Ping)
	}
	a.Log.Info().Str("driver", driver).Msg("analysis store ready")
	return repo, nil
}

// newModelClient returns nil when no provider has a usable key.
func newModelClient(cfg config.AI, log *logger.Logger) *openai.Failover {
	named := cfg.Providers()
	if len(named) == 0 {
		return nil
	}
	providers := make([]openai.Provider, 0, len(named))
	for _, p := range named {
		providers = append(providers, openai.NewClient(openai.Config{
			Name:        p.Name,
			APIKey:      p.APIKey,
			Model:       p.Model,
			BaseURL:     p.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}))
	}
	f := openai.NewFailover(log.WithComponent("ai"), providers...)
	log.Info().Strs("providers", f.Providers()).Msg("AI providers configured")
	return f
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

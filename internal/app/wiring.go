package app

import (
	"context"
	"fmt"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/config"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/report"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	dbbuilder "github.com/operacoevilla-web/avalia-o-desempenho/pkg/database"
	"github.com/operacoevilla-web/avalia-o-desempenho/pkg/kv"
	"go.uber.org/zap"
)

// Backend is a key-value store that owns a connection.
type Backend interface {
	repository.KeyValueStore
	Close() error
}

// OpenBackend opens the key-value backend selected by cfg.StoreBackend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := kv.NewRedis(ctx,
			kv.WithAddress(cfg.RedisAddr),
			kv.WithKeyPrefix(cfg.RedisKeyPrefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis init failed: %w", err)
		}
		logger.Info("Redis backend initialized", zap.String("addr", cfg.RedisAddr))
		return client, nil

	case config.BackendSQLite:
		db, err := dbbuilder.New(
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
			dbbuilder.WithInitStatements("PRAGMA busy_timeout = 5000"),
		)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		store, err := kv.NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("SQLite backend initialized",
			zap.String("driver", cfg.DBDriver),
			zap.String("path", cfg.DBPath))
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// NewReportGenerator returns the generative client, or a disabled generator
// when no API key is configured.
func NewReportGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ReportGenerator, error) {
	if cfg.GenAIAPIKey == "" {
		logger.Warn("no generative API key configured; report generation disabled")
		return report.Disabled{}, nil
	}
	gen, err := report.NewGenerator(ctx, cfg.GenAIAPIKey,
		report.WithModel(cfg.GenAIModel),
		report.WithTimeout(cfg.GenAITimeout),
		report.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("report generator init failed: %w", err)
	}
	return gen, nil
}

// LoadCatalog returns the YAML rubric at cfg.RubricPath, or the default one.
func LoadCatalog(cfg *config.Config) (*rubric.Catalog, error) {
	if cfg.RubricPath == "" {
		return rubric.Default(), nil
	}
	catalog, err := rubric.Load(cfg.RubricPath)
	if err != nil {
		return nil, fmt.Errorf("rubric load failed: %w", err)
	}
	return catalog, nil
}

// Services bundles the evaluation service with the backend it owns.
type Services struct {
	Evaluations *service.EvaluationService
	backend     Backend
}

// NewServices wires backend, store, generator and catalog into the service.
func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	catalog, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	generator, err := NewReportGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	be, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := repository.NewLocalStore(be, repository.WithLogger(logger))
	return &Services{
		Evaluations: service.NewEvaluationService(store, generator, catalog, logger),
		backend:     be,
	}, nil
}

func (s *Services) Close() error {
	return s.backend.Close()
}

// Package app assembles the issue scanner from a Config. Both binaries use it.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/config"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/database"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/github"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/repository"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultVertexModel = "gemini-2.0-flash-lite-001"
)

// Cache is the storage backend as seen by the binaries.
type Cache interface {
	service.IssueCache
	Ping(ctx context.Context) error
}

// App holds the wired service and everything that must be released on exit.
type App struct {
	Service service.IssueService
	Cache   Cache

	closers []func(context.Context) error
}

// Build connects the store, constructs the GitHub client and LLM provider
// and wires the issue service. On failure everything already opened is closed.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.Cache, err = a.openCache(ctx, cfg, logger); err != nil {
		return nil, err
	}

	gen, err := a.openGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []github.Option{github.WithLogger(logger)}
	if cfg.GitHubAPIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHubAPIURL))
	}
	if cfg.GitHubTimeout > 0 {
		opts = append(opts, github.WithTimeout(cfg.GitHubTimeout))
	}
	fetcher := github.NewClient(cfg.GitHubToken, opts...)

	analyzer := service.NewAnalysisClient(gen, logger)
	a.Service = service.NewIssueService(fetcher, a.Cache, analyzer, logger)

	logger.Info("issue scanner wired",
		zap.String("storage", cfg.StorageDriver),
		zap.String("llm_provider", cfg.LLMProvider))
	return a, nil
}

func (a *App) openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (Cache, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := database.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		return repository.NewIssueRepository(ctx, client, client.Database(cfg.DBName), logger)

	case config.StorageSQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		return repository.NewIssueSQLite(ctx, db, logger)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) openGenerator(ctx context.Context, cfg config.Config) (service.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return service.NewGeminiLLM(ctx, cfg.GeminiAPIKey, modelOr(cfg.LLMModel, defaultGeminiModel), "", nil)

	case config.ProviderVertex:
		llm, err := service.NewVertexLLM(ctx, cfg.ProjectID, cfg.Location, modelOr(cfg.LLMModel, defaultVertexModel), cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return llm.Close() })
		return llm, nil

	case config.ProviderDummy:
		return service.NewDummyLLM(), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

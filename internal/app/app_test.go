package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/config"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

func TestBuild_SQLiteWithDummyProvider(t *testing.T) {
	cfg := config.Config{
		StorageDriver: config.StorageSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "data", "issues.db"),
		GitHubToken:   "ghp_test",
		LLMProvider:   config.ProviderDummy,
	}

	a, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close(context.Background())

	require.NotNil(t, a.Service)
	assert.NoError(t, a.Cache.Ping(context.Background()))

	_, err = a.Service.Analyze(context.Background(), "acme/widgets", "triage")
	assert.ErrorIs(t, err, service.ErrNotScanned)
}

func TestBuild_UnknownProviderClosesStore(t *testing.T) {
	cfg := config.Config{
		StorageDriver: config.StorageSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "issues.db"),
		LLMProvider:   "openai",
	}

	_, err := Build(context.Background(), cfg, zap.NewNop())

	assert.ErrorContains(t, err, `unsupported LLM provider "openai"`)
}

func TestBuild_GeminiRequiresKey(t *testing.T) {
	cfg := config.Config{
		StorageDriver: config.StorageSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "issues.db"),
		LLMProvider:   config.ProviderGemini,
	}

	_, err := Build(context.Background(), cfg, zap.NewNop())

	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	a := &App{closers: []func(context.Context) error{
		func(context.Context) error { calls++; return nil },
	}}

	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

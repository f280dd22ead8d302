package bootstrap

import (
	"context"
	"io"
	"testing"

	"github.com/bryanwahyu/truesight/internal/application/analysis"
	"github.com/bryanwahyu/truesight/internal/config"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/infra/ai/openai"
	"github.com/bryanwahyu/truesight/internal/middleware"
)

func newApp(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()
	opts.LogOutput = io.Discard
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	app, err := New(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNew_DefaultsToHeuristicInMemory(t *testing.T) {
	app := newApp(t, config.Default(), Options{})

	if app.Service.AI != nil {
		t.Error("expected no AI client without keys")
	}
	if app.Service.Exports != nil {
		t.Error("expected exports disabled by default")
	}
	if _, ok := app.Checks["database"]; !ok {
		t.Error("expected database health check")
	}
	if err := app.Checks["database"].Check(context.Background()); err != nil {
		t.Errorf("memory store should be healthy: %v", err)
	}

	a, err := app.Service.AnalyzeText(context.Background(), analysis.TextCommand{TenantID: "acme", Text: "Ha ha, just kidding about the bomb"})
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	if a.Classification != threat.ClassificationHoax {
		t.Errorf("expected hoax, got %s", a.Classification)
	}
	if got := app.Metrics.Snapshot()["analyses_heuristic"]; got != uint64(1) {
		t.Errorf("expected one heuristic analysis recorded, got %v", got)
	}
}

func TestNew_WiresProvidersInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.AI.DefaultProvider = config.ProviderDeepSeek
	cfg.AI.Groq.APIKey = "gsk_test"
	cfg.AI.DeepSeek.APIKey = "sk_test"
	cfg.AI.StrictConsistency = true

	app := newApp(t, cfg, Options{})

	f, ok := app.Service.AI.(*openai.Failover)
	if !ok {
		t.Fatalf("expected failover client, got %T", app.Service.AI)
	}
	names := f.Providers()
	if len(names) != 2 || names[0] != config.ProviderDeepSeek || names[1] != config.ProviderGroq {
		t.Errorf("unexpected provider order %v", names)
	}
	if app.Service.Cache == nil {
		t.Error("expected response cache with a model client")
	}
	if len(app.Service.Checks) != 1 {
		t.Errorf("expected strict consistency check, got %d checks", len(app.Service.Checks))
	}
}

func TestNew_PlaceholderKeysIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Groq.APIKey = "your_groq_api_key_here"

	if app := newApp(t, cfg, Options{}); app.Service.AI != nil {
		t.Error("placeholder key should not enable the model path")
	}
}

func TestNew_MemoryStoreOverridesDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMySQL
	cfg.Minio.Enabled = true
	cfg.Minio.Endpoint = "127.0.0.1:1"
	cfg.Minio.BucketName = "reports"

	app := newApp(t, cfg, Options{MemoryStore: true, SkipObjectStore: true})
	if app.db != nil {
		t.Error("expected no SQL handle with MemoryStore")
	}
	if app.Service.Exports != nil {
		t.Error("expected object store skipped")
	}
}

package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

func record(tenant, id string, at time.Time) *threat.Record {
	return &threat.Record{
		TenantID:  tenant,
		Analysis:  &threat.Analysis{ID: id},
		Engine:    threat.EngineHeuristic,
		CreatedAt: at,
	}
}

func TestAnalysisRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository()
	now := time.Now()

	if err := repo.Save(ctx, record("acme", "a1", now)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, "acme", "a1")
	if err != nil || got.Analysis.ID != "a1" {
		t.Fatalf("Expected a1, got %v %v", got, err)
	}

	if _, err := repo.Get(ctx, "other", "a1"); !errors.Is(err, threat.ErrNotFound) {
		t.Errorf("Expected tenant isolation, got %v", err)
	}

	updated := record("acme", "a1", now)
	updated.Engine = threat.EngineAI
	_ = repo.Save(ctx, updated)
	got, _ = repo.Get(ctx, "acme", "a1")
	if got.Engine != threat.EngineAI {
		t.Error("Expected Save to replace an existing id")
	}
	if list, _ := repo.Latest(ctx, "acme", 0); len(list) != 1 {
		t.Errorf("Expected one record after upsert, got %d", len(list))
	}
}

func TestAnalysisRepository_LatestAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = repo.Save(ctx, record("acme", fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	latest, _ := repo.Latest(ctx, "acme", 2)
	if len(latest) != 2 || latest[0].Analysis.ID != "a4" || latest[1].Analysis.ID != "a3" {
		t.Errorf("Unexpected latest order: %v, %v", latest[0].Analysis.ID, latest[1].Analysis.ID)
	}

	page, _ := repo.Paginate(ctx, "acme", 2, 2)
	if page.Total != 5 || page.TotalPages != 3 || len(page.Data) != 2 {
		t.Errorf("Unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Data))
	}
	if page.Data[0].Analysis.ID != "a2" {
		t.Errorf("Expected a2 first on page 2, got %s", page.Data[0].Analysis.ID)
	}

	beyond, _ := repo.Paginate(ctx, "acme", 9, 2)
	if len(beyond.Data) != 0 {
		t.Errorf("Expected empty page past the end, got %d", len(beyond.Data))
	}
}

package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

var columns = []string{"id", "tenant_id", "engine", "input_text", "result_json", "created_at"}

func sampleRecord() *threat.Record {
	a := threat.Verdict{
		Confidence:     67,
		Classification: threat.ClassificationGenuine,
		ThreatLevel:    threat.LevelMedium,
		Summary:        "s",
	}.Stamp("a-1", threat.Metadata{Source: threat.SourceEmail, Timestamp: time.Unix(0, 0).UTC()})
	return &threat.Record{
		TenantID:  "acme",
		Analysis:  a,
		Input:     "bomb",
		Engine:    threat.EngineHeuristic,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAnalysisRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO threat_analyses").
		WithArgs("a-1", "acme", "heuristic", "genuine", "medium", 67, "email", "bomb", sqlmock.AnyArg(), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewAnalysisRepository(db).Save(context.Background(), rec); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAnalysisRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	rec := sampleRecord()
	body, _ := json.Marshal(rec.Analysis)
	mock.ExpectQuery("SELECT (.+) FROM threat_analyses WHERE tenant_id=\\? AND id=\\?").
		WithArgs("acme", "a-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("a-1", "acme", "heuristic", "bomb", body, rec.CreatedAt))

	got, err := NewAnalysisRepository(db).Get(context.Background(), "acme", "a-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Analysis.ID != "a-1" || got.Analysis.Confidence != 67 || got.Engine != threat.EngineHeuristic {
		t.Errorf("unexpected record: %+v", got.Analysis)
	}
	if got.Analysis.Metadata.Source != threat.SourceEmail || got.Input != "bomb" {
		t.Errorf("unexpected decoded fields: %+v", got)
	}
}

func TestAnalysisRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM threat_analyses").
		WithArgs("acme", "nope").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = NewAnalysisRepository(db).Get(context.Background(), "acme", "nope")
	if !errors.Is(err, threat.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisRepository_Paginate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	rec := sampleRecord()
	body, _ := json.Marshal(rec.Analysis)
	mock.ExpectQuery("SELECT (.+) FROM threat_analyses WHERE tenant_id=\\? ORDER BY created_at DESC, id DESC LIMIT \\? OFFSET \\?").
		WithArgs("acme", 10, 10).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("a-1", "acme", "ai", "bomb", body, rec.CreatedAt))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	page, err := NewAnalysisRepository(db).Paginate(context.Background(), "acme", 2, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 11 || page.TotalPages != 2 || len(page.Data) != 1 {
		t.Errorf("unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Data))
	}
	if page.Data[0].Engine != threat.EngineAI {
		t.Errorf("expected ai engine, got %s", page.Data[0].Engine)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAnalysisRepository_LatestDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM threat_analyses").
		WithArgs("acme", 20).
		WillReturnRows(sqlmock.NewRows(columns))

	list, err := NewAnalysisRepository(db).Latest(context.Background(), "acme", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

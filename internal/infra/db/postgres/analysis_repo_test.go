package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

func TestAnalysisRepository_SaveUsesUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	a := threat.Assess("bomb in room B").Stamp("p-1", threat.Metadata{})
	rec := &threat.Record{TenantID: "", Analysis: a, Input: "bomb in room B", Engine: threat.EngineHeuristic}

	mock.ExpectExec("INSERT INTO threat_analyses (.+) ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("p-1", "-", "heuristic", string(a.Classification), string(a.ThreatLevel), a.Confidence,
			"text", "bomb in room B", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewAnalysisRepository(db).Save(context.Background(), rec); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAnalysisRepository_Get(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{
			name: "found",
			rows: func() *sqlmock.Rows {
				body, _ := json.Marshal(threat.Assess("hello").Stamp("p-1", threat.Metadata{}))
				return sqlmock.NewRows([]string{"id", "tenant_id", "engine", "input_text", "result_json", "created_at"}).
					AddRow("p-1", "acme", "ai", "hello", body, time.Now())
			}(),
		},
		{
			name:    "missing",
			rows:    sqlmock.NewRows([]string{"id", "tenant_id", "engine", "input_text", "result_json", "created_at"}),
			wantErr: threat.ErrNotFound,
		},
		{
			name: "corrupt json",
			rows: sqlmock.NewRows([]string{"id", "tenant_id", "engine", "input_text", "result_json", "created_at"}).
				AddRow("p-1", "acme", "ai", "hello", []byte("{"), time.Now()),
			wantErr: errAny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock db: %v", err)
			}
			defer db.Close()

			mock.ExpectQuery("SELECT (.+) FROM threat_analyses WHERE tenant_id=\\$1 AND id=\\$2").
				WithArgs("acme", "p-1").
				WillReturnRows(tt.rows)

			got, err := NewAnalysisRepository(db).Get(context.Background(), "acme", "p-1")
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("expected no error, got %v", err)
			case tt.wantErr == errAny && err == nil:
				t.Fatal("expected an error")
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && (got.Analysis.ID != "p-1" || got.Engine != threat.EngineAI) {
				t.Errorf("unexpected record %+v", got)
			}
		})
	}
}

var errAny = errors.New("any error")

func TestAnalysisRepository_PaginateEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM threat_analyses").
		WithArgs("acme", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "engine", "input_text", "result_json", "created_at"}))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := NewAnalysisRepository(db).Paginate(context.Background(), "acme", 0, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 || page.TotalPages != 0 || len(page.Data) != 0 {
		t.Errorf("unexpected page %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

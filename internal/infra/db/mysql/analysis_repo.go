package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectColumns = `SELECT id, tenant_id, engine, input_text, result_json, created_at
FROM threat_analyses`

// Save insert/update analysis record
func (r *AnalysisRepository) Save(ctx context.Context, rec *threat.Record) error {
	const q = `
INSERT INTO threat_analyses
  (id, tenant_id, engine, classification, threat_level, confidence, source, input_text, result_json, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  engine=VALUES(engine), classification=VALUES(classification), threat_level=VALUES(threat_level),
  confidence=VALUES(confidence), result_json=VALUES(result_json);
`
	a := rec.Analysis
	result, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(rec.TenantID), string(rec.Engine),
		string(a.Classification), string(a.ThreatLevel), a.Confidence, string(a.Metadata.Source),
		rec.Input, string(result), createdAt,
	)
	return err
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant, id string) (*threat.Record, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+`
WHERE tenant_id=? AND id=? LIMIT 1;`, tenant, id)
	return scanRecord(row)
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*threat.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+`
WHERE tenant_id=? ORDER BY created_at DESC, id DESC LIMIT ?;`, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Paginate with offset + limit (classic pagination)
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (threat.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx, selectColumns+`
WHERE tenant_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`, tenant, pageSize, offset)
	if err != nil {
		return threat.Page{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	data, err := collect(rows)
	if err != nil {
		return threat.Page{}, err
	}

	total, err := r.Count(ctx, tenant)
	if err != nil {
		return threat.Page{}, fmt.Errorf("getting total count: %w", err)
	}
	return threat.Page{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Count returns the number of analyses stored for a tenant
func (r *AnalysisRepository) Count(ctx context.Context, tenant string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threat_analyses WHERE tenant_id = ?", tenant).Scan(&count)
	return count, err
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func collect(rows *sql.Rows) ([]*threat.Record, error) {
	out := []*threat.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

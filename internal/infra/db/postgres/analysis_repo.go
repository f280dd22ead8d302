package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

const selectColumns = `SELECT id, tenant_id, engine, input_text, result_json, created_at
FROM threat_analyses`

// Save insert/update analysis record
func (r *AnalysisRepository) Save(ctx context.Context, rec *threat.Record) error {
	const q = `
INSERT INTO threat_analyses
(id, tenant_id, engine, classification, threat_level, confidence, source, input_text, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
 engine = EXCLUDED.engine,
 classification = EXCLUDED.classification,
 threat_level = EXCLUDED.threat_level,
 confidence = EXCLUDED.confidence,
 result_json = EXCLUDED.result_json;`

	a := rec.Analysis
	result, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(rec.TenantID), string(rec.Engine),
		string(a.Classification), string(a.ThreatLevel), a.Confidence, string(a.Metadata.Source),
		rec.Input, string(result), created,
	)
	return err
}

func (r *AnalysisRepository) Get(ctx context.Context, tenant, id string) (*threat.Record, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+`
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`, tenant, id)
	return scanRecord(row)
}

func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*threat.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+`
WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;`, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (threat.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	rows, err := r.db.QueryContext(ctx, selectColumns+`
WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`, tenant, pageSize, (page-1)*pageSize)
	if err != nil {
		return threat.Page{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	data, err := collect(rows)
	if err != nil {
		return threat.Page{}, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM threat_analyses WHERE tenant_id=$1`, tenant).Scan(&total); err != nil {
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

func (r *AnalysisRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func collect(rows *sql.Rows) ([]*threat.Record, error) {
	out := []*threat.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

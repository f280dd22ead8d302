package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS threat_analyses (
  id             TEXT        PRIMARY KEY,
  tenant_id      TEXT        NOT NULL,
  engine         TEXT        NOT NULL,
  classification TEXT        NOT NULL,
  threat_level   TEXT        NOT NULL,
  confidence     INTEGER     NOT NULL,
  source         TEXT        NOT NULL,
  input_text     TEXT        NOT NULL,
  result_json    JSONB       NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_threat_analyses_tenant_created
  ON threat_analyses (tenant_id, created_at DESC);`

// Migrate creates the analyses table and index when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

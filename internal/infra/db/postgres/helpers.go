package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*threat.Record, error) {
	var (
		rec     threat.Record
		id      string
		result  []byte
		created time.Time
	)
	if err := row.Scan(&id, &rec.TenantID, &rec.Engine, &rec.Input, &result, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, threat.ErrNotFound
		}
		return nil, err
	}
	var a threat.Analysis
	if err := json.Unmarshal(result, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	a.ID = id
	rec.Analysis = &a
	rec.CreatedAt = created
	return &rec, nil
}

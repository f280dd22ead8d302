package threat

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("analysis not found")

// Engine names the path that produced a record.
type Engine string

const (
	EngineAI        Engine = "ai"
	EngineHeuristic Engine = "heuristic"
)

// Record is a stored analysis together with the input it was built from.
type Record struct {
	TenantID  string    `json:"tenant_id"`
	Analysis  *Analysis `json:"analysis"`
	Input     string    `json:"input"`
	Engine    Engine    `json:"engine"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant, id string) (*Record, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Record, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (Page, error)
}

// Page is a paginated list of records.
type Page struct {
	Data       []*Record `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Total      int64     `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

// AnalysisRepository keeps records in process memory. It backs the CLI and
// deployments without a database.
type AnalysisRepository struct {
	mu      sync.RWMutex
	records map[string][]*threat.Record // per tenant, insertion order
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{records: map[string][]*threat.Record{}}
}

// Save inserts a record or replaces the one with the same id.
func (r *AnalysisRepository) Save(_ context.Context, rec *threat.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.records[rec.TenantID]
	for i, existing := range list {
		if existing.Analysis.ID == rec.Analysis.ID {
			list[i] = rec
			return nil
		}
	}
	r.records[rec.TenantID] = append(list, rec)
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, tenant, id string) (*threat.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records[tenant] {
		if rec.Analysis.ID == id {
			return rec, nil
		}
	}
	return nil, threat.ErrNotFound
}

func (r *AnalysisRepository) Latest(_ context.Context, tenant string, limit int) ([]*threat.Record, error) {
	sorted := r.newestFirst(tenant)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (r *AnalysisRepository) Paginate(_ context.Context, tenant string, page, pageSize int) (threat.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	sorted := r.newestFirst(tenant)
	total := len(sorted)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return threat.Page{
		Data:       sorted[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      int64(total),
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// newestFirst orders by created_at desc, id desc like the SQL stores.
func (r *AnalysisRepository) newestFirst(tenant string) []*threat.Record {
	r.mu.RLock()
	out := make([]*threat.Record, len(r.records[tenant]))
	copy(out, r.records[tenant])
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Analysis.ID > out[j].Analysis.ID
	})
	return out
}

// Ping always succeeds; it lets the store join health checks.
func (r *AnalysisRepository) Ping(context.Context) error { return nil }

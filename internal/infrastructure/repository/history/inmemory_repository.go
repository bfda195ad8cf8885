package history

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "sitesearch/internal/domain/search"
)

const inMemoryCap = 200

// InMemoryRepository keeps search history in process memory. Used when no
// database DSN is configured; history is lost on restart.
type InMemoryRepository struct {
	mu      sync.Mutex
	records []domain.Record
}

// NewInMemoryRepository creates an empty in-memory history store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Record appends one executed search, evicting the oldest entries beyond cap.
func (r *InMemoryRepository) Record(_ context.Context, rec domain.Record) error {
	rec.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > inMemoryCap {
		r.records = r.records[len(r.records)-inMemoryCap:]
	}
	return nil
}

// Recent returns the most recently recorded searches, newest first.
func (r *InMemoryRepository) Recent(_ context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.records)
	if limit > n {
		limit = n
	}
	out := make([]domain.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

package search

import "context"

// HistoryRepository exposes data access for persisted search records. The
// history is an audit trail for the recent-queries view; it is never consulted
// on the search path itself.
type HistoryRepository interface {
	Record(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

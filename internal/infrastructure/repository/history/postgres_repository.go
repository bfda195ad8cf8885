package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/database/entities"
)

// PostgresRepository persists search history via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record inserts one executed search.
func (r *PostgresRepository) Record(ctx context.Context, rec domain.Record) error {
	row := entities.QueryLog{
		ID:         uuid.NewString(),
		Term:       rec.Term,
		Total:      rec.Total,
		DurationMs: rec.Duration.Milliseconds(),
		CreatedAt:  rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the most recently executed searches, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []entities.QueryLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.Record{
			ID:        row.ID,
			Term:      row.Term,
			Total:     row.Total,
			Duration:  time.Duration(row.DurationMs) * time.Millisecond,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

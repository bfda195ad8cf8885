package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"sitesearch/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.QueryLog{}); err != nil {
		return err
	}
	log.Debug().Msg("query_logs schema up to date")
	return nil
}

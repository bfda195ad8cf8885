package entities

import "time"

// QueryLog models the persisted representation of one executed search.
type QueryLog struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Term       string    `gorm:"type:text;not null"`
	Total      int       `gorm:"not null"`
	DurationMs int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}

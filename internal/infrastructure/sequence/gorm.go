package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// SequenceCounter is the persistence model for per-day document counters
type SequenceCounter struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix   string    `gorm:"size:10;primaryKey"`
	SeqDate  string    `gorm:"size:8;primaryKey;column:seq_date"`
	Value    int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// GormSequencer issues document sequence numbers from a database counter
// table. The increment is a single upsert statement, so concurrent callers
// always receive distinct values.
type GormSequencer struct {
	db *gorm.DB
}

// NewGormSequencer creates a new database-backed sequencer
func NewGormSequencer(db *gorm.DB) *GormSequencer {
	return &GormSequencer{db: db}
}

// Next returns the next sequence value for the tenant, prefix and day
func (s *GormSequencer) Next(ctx context.Context, tenantID uuid.UUID, prefix string, date time.Time) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (tenant_id, prefix, seq_date, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (tenant_id, prefix, seq_date)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`,
		tenantID, prefix, date.Format("20060102"),
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s/%s: %w", prefix, date.Format("20060102"), err)
	}
	return value, nil
}

var _ inventory.DocumentSequencer = (*GormSequencer)(nil)

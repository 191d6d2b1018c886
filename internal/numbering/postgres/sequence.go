package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/meeting-manager/internal/numbering"
	"gorm.io/gorm"
)

const nextSequenceSQL = `
INSERT INTO meeting_sequences (year, last_value) VALUES (?, 1)
ON CONFLICT (year) DO UPDATE SET last_value = meeting_sequences.last_value + 1
RETURNING last_value`

// SequenceAllocator advances the per-year counter row with a single upsert.
// Bound to a transaction, the counter row stays locked until commit, so
// numbers for a year are handed out in commit order.
type SequenceAllocator struct {
	db *gorm.DB
}

func NewSequenceAllocator(db *gorm.DB) numbering.Allocator {
	return &SequenceAllocator{db: db}
}

func (a *SequenceAllocator) Next(ctx context.Context, year int) (int, error) {
	var next int
	if err := a.db.WithContext(ctx).Raw(nextSequenceSQL, year).Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("allocate meeting sequence for %d: %w", year, err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("allocate meeting sequence for %d: no value returned", year)
	}
	return next, nil
}

// Package numbering formats year-scoped meeting numbers such as
// HOP-2026-0001. Sequence values come from a per-year counter advanced
// atomically by the storage layer; this package never derives the next value
// by reading existing numbers.
package numbering

import (
	"context"
	"fmt"
)

// DefaultPrefix is used when no prefix is configured.
const DefaultPrefix = "HOP"

// Allocator hands out the next sequence value for a year. Implementations
// must be atomic with respect to concurrent callers.
type Allocator interface {
	Next(ctx context.Context, year int) (int, error)
}

// Format renders prefix-year-seq with the sequence zero padded to four digits.
func Format(prefix string, year, seq int) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// InMemorySequencer issues document sequence numbers from process memory.
// Counters reset on restart, so it is only suitable for development and tests.
type InMemorySequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewInMemorySequencer creates a new in-memory sequencer
func NewInMemorySequencer() *InMemorySequencer {
	return &InMemorySequencer{
		counters: make(map[string]int64),
	}
}

// Next returns the next sequence value for the tenant, prefix and day
func (s *InMemorySequencer) Next(ctx context.Context, tenantID uuid.UUID, prefix string, date time.Time) (int64, error) {
	key := fmt.Sprintf("%s:%s:%s", tenantID, prefix, date.Format("20060102"))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}

var _ inventory.DocumentSequencer = (*InMemorySequencer)(nil)

package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySequencer_Next(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("issues strictly increasing values", func(t *testing.T) {
		seq := NewInMemorySequencer()

		for i := int64(1); i <= 5; i++ {
			value, err := seq.Next(ctx, tenantID, "PUR", day)
			require.NoError(t, err)
			assert.Equal(t, i, value)
		}
	})

	t.Run("counters are independent per prefix", func(t *testing.T) {
		seq := NewInMemorySequencer()

		v1, err := seq.Next(ctx, tenantID, "PUR", day)
		require.NoError(t, err)
		v2, err := seq.Next(ctx, tenantID, "SAL", day)
		require.NoError(t, err)

		assert.Equal(t, int64(1), v1)
		assert.Equal(t, int64(1), v2)
	})

	t.Run("counters reset per day", func(t *testing.T) {
		seq := NewInMemorySequencer()

		_, err := seq.Next(ctx, tenantID, "PUR", day)
		require.NoError(t, err)

		value, err := seq.Next(ctx, tenantID, "PUR", day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("counters are independent per tenant", func(t *testing.T) {
		seq := NewInMemorySequencer()

		_, err := seq.Next(ctx, tenantID, "PUR", day)
		require.NoError(t, err)

		value, err := seq.Next(ctx, uuid.New(), "PUR", day)
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
	})
}

func TestInMemorySequencer_Concurrency(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	seq := NewInMemorySequencer()

	const workers = 50
	values := make(chan int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := seq.Next(ctx, tenantID, "TRF", day)
			assert.NoError(t, err)
			values <- value
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for value := range values {
		assert.False(t, seen[value], "duplicate sequence value %d", value)
		assert.True(t, value >= 1 && value <= workers)
		seen[value] = true
	}
	assert.Len(t, seen, workers)
}

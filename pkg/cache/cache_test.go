package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, err := m.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, _ := m.Get(ctx, "k")
	assert.Equal(t, int64(3), n)

	now = now.Add(time.Minute)
	n, _ = m.Get(ctx, "k")
	assert.Equal(t, int64(0), n)
	n, _ = m.Incr(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)

	require.NoError(t, m.Reset(ctx, "k"))
	n, _ = m.Get(ctx, "k")
	assert.Equal(t, int64(0), n)
}

func TestNewFallsBackToMemory(t *testing.T) {
	_, ok := New("").(*MemoryCounter)
	assert.True(t, ok)
}

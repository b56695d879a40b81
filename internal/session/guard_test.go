package session

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionGuard_SingleWinner(t *testing.T) {
	g := NewSubmissionGuard()

	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		trigger := TriggerManual
		if i%2 == 0 {
			trigger = TriggerDeadline
		}
		go func() {
			defer wg.Done()
			<-start
			if g.TryFinalize(trigger) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.True(t, g.Latched())
	assert.False(t, g.TryFinalize(TriggerManual))
}

func TestSubmissionGuard_WinnerRecorded(t *testing.T) {
	g := NewSubmissionGuard()
	require.True(t, g.TryFinalize(TriggerDeadline))
	require.False(t, g.TryFinalize(TriggerManual))

	w, ok := g.Winner()
	assert.True(t, ok)
	assert.Equal(t, TriggerDeadline, w)
}

func TestSubmissionGuard_SealOnce(t *testing.T) {
	g := NewSubmissionGuard()

	_, err := g.Seal(func() Finalization { return Finalization{} })
	assert.ErrorIs(t, err, ErrNotLatched)

	require.True(t, g.TryFinalize(TriggerManual))

	calls := 0
	compute := func() Finalization {
		calls++
		return Finalization{Outcome: Outcome{Score: 42 + calls}}
	}

	first, err := g.Seal(compute)
	require.NoError(t, err)
	second, err := g.Seal(compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 43, first.Score)
	assert.Equal(t, first, second)

	sealed, ok := g.Sealed()
	assert.True(t, ok)
	assert.Equal(t, first, sealed)
}

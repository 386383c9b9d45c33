package driving

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_BeginEnd(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Busy())

	assert.True(t, s.Begin())
	assert.True(t, s.Busy())
	assert.False(t, s.Begin(), "second query must be rejected while busy")

	s.End()
	assert.False(t, s.Busy())
	assert.True(t, s.Begin())
}

func TestSession_OnlyOneWinner(t *testing.T) {
	s := NewSession()
	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Begin() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

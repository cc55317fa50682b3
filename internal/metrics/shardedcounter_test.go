package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedCounterSumsAcrossStripes(t *testing.T) {
	c := NewShardedCounter()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), c.Load())
}

func TestShardedCounterHandlesNegativeDeltas(t *testing.T) {
	c := NewShardedCounter()
	c.Add(5)
	c.Add(-2)
	assert.Equal(t, int64(3), c.Load())
}

package exchange

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderIDs(t *testing.T) {
	ids := NewOrderIDsWithPrefix("session")
	assert.Zero(t, ids.Count())

	assert.Equal(t, "session1", ids.Next())
	assert.Equal(t, "session2", ids.Next())
	assert.EqualValues(t, 2, ids.Count())
}

func TestOrderIDsAreUniqueAcrossInstances(t *testing.T) {
	assert.NotEqual(t, NewOrderIDs().Next(), NewOrderIDs().Next())
}

func TestOrderIDsConcurrent(t *testing.T) {
	ids := NewOrderIDs()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id := ids.Next()

			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Len(t, seen, 50)
	assert.EqualValues(t, 50, ids.Count())
}

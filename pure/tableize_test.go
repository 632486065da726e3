package pure_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/on-the-ground/rex_ive_go/pure"
)

func TestTableize_CachesByArgument(t *testing.T) {
	count := 0
	fn := pure.Tableize(func(i int) int {
		count++
		return i * 2
	}, 2)

	assert.Equal(t, 4, fn(2))
	assert.Equal(t, 4, fn(2)) // cached
	assert.Equal(t, 6, fn(3))
	assert.Equal(t, 2, count)
}

func TestTableize_StructKeys(t *testing.T) {
	type pair struct{ a, b int }
	count := 0
	fn := pure.Tableize(func(p pair) int {
		count++
		return p.a + p.b
	}, 4)

	assert.Equal(t, 5, fn(pair{2, 3}))
	assert.Equal(t, 5, fn(pair{2, 3}))
	assert.Equal(t, 1, count)
}

func TestTableize_RotationKeepsRecentEntries(t *testing.T) {
	calls := map[int]int{}
	fn := pure.Tableize(func(i int) int {
		calls[i]++
		return i
	}, 2)

	fn(1)
	fn(2)
	fn(3) // rotates: {1,2} become the old generation
	fn(1) // still found, promoted
	fn(4) // rotates again: {2} is dropped
	fn(2)

	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 1, 4: 1}, calls)
}

func TestTableize_Concurrent(t *testing.T) {
	fn := pure.Tableize(func(i int) int { return i * i }, 8)

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, (i%16)*(i%16), fn(i%16))
		}()
	}
	wg.Wait()
}

func TestTableize_PanicsOnZeroSize(t *testing.T) {
	assert.Panics(t, func() { pure.Tableize(func(i int) int { return i }, 0) })
}

package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for size := 1; size <= 7; size++ {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				items := make([]int, n)
				for i := range items {
					items[i] = i
				}

				batches := Partition(items, size)
				require.Len(t, batches, (n+size-1)/size)

				var joined []int
				for i, b := range batches {
					if i < len(batches)-1 {
						assert.Len(t, b, size)
					}
					joined = append(joined, b...)
				}
				if n == 0 {
					assert.Empty(t, joined)
					return
				}
				assert.Equal(t, items, joined)

				last := n % size
				if last == 0 {
					last = size
				}
				assert.Len(t, batches[len(batches)-1], last)
			})
		}
	}
}

func TestPartitionBatchesDoNotAlias(t *testing.T) {
	items := []int{1, 2, 3, 4}
	batches := Partition(items, 2)

	_ = append(batches[0], 99)
	assert.Equal(t, []int{3, 4}, batches[1])
}

func TestPartitionRejectsNonPositiveSize(t *testing.T) {
	assert.Panics(t, func() { Partition([]int{1}, 0) })
}

package core

// Partition splits items into contiguous batches of size, preserving order.
// The last batch holds the remainder. Batches share the backing array but are capped
// so appending to one never overwrites the next. size must be positive.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 {
		panic("core: partition size must be positive")
	}
	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}

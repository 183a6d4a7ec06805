package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllBatches_CoversEveryEra(t *testing.T) {
	t.Parallel()

	batches := AllBatches()
	set := make(map[Batch]struct{}, len(batches))
	for _, b := range batches {
		set[b] = struct{}{}
	}

	for _, want := range []Batch{"W05", "S05", "W15", "S20", "F24", "W25", "S25", "X25", "F25"} {
		require.Contains(t, set, want)
	}
	// The fall code only exists from 2024 on, spring only from 2025 on.
	require.NotContains(t, set, Batch("F23"))
	require.NotContains(t, set, Batch("X24"))
}

func TestAllBatches_OrderedAndUnique(t *testing.T) {
	t.Parallel()

	batches := AllBatches()
	require.Equal(t, Batch("W05"), batches[0])
	require.Equal(t, Batch("S05"), batches[1])

	seen := make(map[Batch]struct{})
	for _, b := range batches {
		_, dup := seen[b]
		require.False(t, dup, "duplicate batch %s", b)
		seen[b] = struct{}{}
	}
}

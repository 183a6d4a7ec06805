package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

func TestBatchesCommand_ListsAllKnownBatches(t *testing.T) {
	t.Parallel()

	cmd := newBatchesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	batches := harvest.AllBatches()
	expected := make([]string, len(batches))
	for i, b := range batches {
		expected[i] = string(b)
	}
	require.Equal(t, expected, lines)
	require.Contains(t, lines, "W22")
}

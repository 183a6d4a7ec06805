package harvest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointFile_LoadMissingIsEmpty(t *testing.T) {
	t.Parallel()

	cf, err := NewCheckpointFile(t.TempDir(), "harvest_progress.json")
	require.NoError(t, err)

	cp, err := cf.Load()
	require.NoError(t, err)
	require.Empty(t, cp.Data)
	require.Empty(t, cp.ProcessedURLs)
}

func TestCheckpointFile_RoundTrip(t *testing.T) {
	t.Parallel()

	cf, err := NewCheckpointFile(t.TempDir(), "harvest_progress.json")
	require.NoError(t, err)

	want := Checkpoint{
		Data: []ProfileRecord{
			{Name: "Jane Doe", CompanyName: "Acme", DiscoveredAt: fixedNow},
		},
		ProcessedURLs: []string{"https://www.ycombinator.com/founders/jane-doe"},
	}
	require.NoError(t, cf.Write(want))

	got, err := cf.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCheckpointFile_CorruptFileReportsAndDegrades(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cf, err := NewCheckpointFile(dir, "harvest_progress.json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cf.Path(), []byte("{not json"), 0o600))

	cp, err := cf.Load()
	require.ErrorIs(t, err, ErrCheckpointCorrupt)
	require.Empty(t, cp.Data)
}

func TestCheckpointFile_WireFieldNames(t *testing.T) {
	t.Parallel()

	cf, err := NewCheckpointFile(t.TempDir(), "harvest_progress.json")
	require.NoError(t, err)
	require.NoError(t, cf.Write(Checkpoint{
		Data:          []ProfileRecord{{Name: "Jane"}},
		ProcessedURLs: []string{"https://example.test/founders/jane"},
	}))

	payload, err := os.ReadFile(cf.Path())
	require.NoError(t, err)
	require.Contains(t, string(payload), `"data"`)
	require.Contains(t, string(payload), `"processed_urls"`)
}

func TestCheckpointFile_WriteLeavesNoTempBehind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cf, err := NewCheckpointFile(dir, "harvest_progress.json")
	require.NoError(t, err)
	require.NoError(t, cf.Write(Checkpoint{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "harvest_progress.json", filepath.Base(entries[0].Name()))
}

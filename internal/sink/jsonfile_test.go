package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

func TestJSONFile_Publish_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "founders.json")
	s, err := NewJSONFile(path)
	require.NoError(t, err)

	rows := [][]string{
		founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe"),
		founderRow("John Roe", "https://www.ycombinator.com/founders/john-roe"),
	}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var objects []map[string]string
	require.NoError(t, json.Unmarshal(raw, &objects))
	require.Len(t, objects, 2)
	require.Equal(t, "Jane Doe", objects[0]["name"])
	require.Equal(t, "https://www.ycombinator.com/founders/john-roe", objects[1]["sourceUrl"])
	require.Equal(t, "W22", objects[0]["batch"])
}

func TestJSONFile_Publish_ReplacesPreviousSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "founders.json")
	s, err := NewJSONFile(path)
	require.NoError(t, err)

	first := [][]string{founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe")}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, first))

	second := append(first, founderRow("John Roe", "https://www.ycombinator.com/founders/john-roe"))
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, second))

	var objects []map[string]string
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &objects))
	require.Len(t, objects, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not survive a publish")
}

func TestRowObjects_IgnoresShortRows(t *testing.T) {
	t.Parallel()

	objects := rowObjects([]string{"a", "b"}, [][]string{{"1"}})
	require.Len(t, objects, 1)
	require.Equal(t, "1", objects[0]["a"])
	require.NotContains(t, objects[0], "b")
}

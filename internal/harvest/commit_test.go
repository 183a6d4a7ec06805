package harvest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCommitter(t *testing.T, sinks ...SnapshotSink) (*Committer, *CheckpointFile) {
	t.Helper()
	cf, err := NewCheckpointFile(t.TempDir(), "harvest_progress.json")
	require.NoError(t, err)
	return NewCommitter(cf, sinks, nil), cf
}

func TestCommitter_Commit_WritesCheckpointAndPublishes(t *testing.T) {
	t.Parallel()

	sink := newMemSink("mem")
	committer, cf := newTestCommitter(t, sink)

	cp := Checkpoint{
		Data:          []ProfileRecord{{Name: "Jane", CompanyName: "Acme"}},
		ProcessedURLs: []string{"https://x/founders/jane"},
	}
	rows := [][]string{ProfileRecord{Name: "Jane"}.Row()}
	require.NoError(t, committer.Commit(context.Background(), cp, rows))

	loaded, err := cf.Load()
	require.NoError(t, err)
	require.Equal(t, cp, loaded)

	count, lastRows := sink.published()
	require.Equal(t, 1, count)
	require.Equal(t, rows, lastRows)
}

func TestCommitter_Commit_SinkFailureIsIsolated(t *testing.T) {
	t.Parallel()

	failing := newMemSink("failing")
	failing.fail(errors.New("destination down"))
	healthy := newMemSink("healthy")

	committer, _ := newTestCommitter(t, failing, healthy)
	require.NoError(t, committer.Commit(context.Background(), Checkpoint{}, nil))

	count, _ := healthy.published()
	require.Equal(t, 1, count, "later sink still delivered")

	status := committer.Status()
	require.Len(t, status, 2)
	require.Equal(t, "failing", status[0].Name)
	require.Equal(t, 1, status[0].Failures)
	require.Contains(t, status[0].LastError, "destination down")
	require.Equal(t, "healthy", status[1].Name)
	require.Zero(t, status[1].Failures)
	require.False(t, status[1].LastSuccess.IsZero())
}

func TestCommitter_Commit_RecoveryClearsError(t *testing.T) {
	t.Parallel()

	sink := newMemSink("mem")
	sink.fail(errors.New("flaky"))
	committer, _ := newTestCommitter(t, sink)

	require.NoError(t, committer.Commit(context.Background(), Checkpoint{}, nil))
	require.Equal(t, 1, committer.Status()[0].Failures)

	sink.fail(nil)
	require.NoError(t, committer.Commit(context.Background(), Checkpoint{}, nil))

	status := committer.Status()[0]
	require.Empty(t, status.LastError)
	require.Equal(t, 1, status.Failures, "failure count is cumulative")
	require.False(t, status.LastSuccess.IsZero())
}

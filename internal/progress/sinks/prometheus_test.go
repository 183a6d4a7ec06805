package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/seedscout/founder-harvest/internal/progress"
)

func TestPrometheusSink_Consume_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := uuid.New()
	now := time.Now().UTC()
	batch := []progress.Event{
		{RunID: runID, TS: now, Stage: progress.StageRunStart},
		{RunID: runID, TS: now, Stage: progress.StageBatchDone, Batch: "W22", Count: 40},
		{
			RunID: runID,
			TS:    now,
			Stage: progress.StageProfileDone,
			URL:   "https://www.ycombinator.com/founders/jane-doe",
			Dur:   3 * time.Second,
		},
		{
			RunID: runID,
			TS:    now,
			Stage: progress.StageProfileFailed,
			URL:   "https://www.ycombinator.com/founders/john-roe",
		},
		{RunID: runID, TS: now, Stage: progress.StageCommit, Count: 25},
		{RunID: runID, TS: now, Stage: progress.StageRunDone, Dur: 90 * time.Second},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted))
	require.InDelta(t, 40.0, testutil.ToFloat64(sink.batchProfiles.WithLabelValues("W22")), 1e-9)
	require.Equal(t, 1.0, testutil.ToFloat64(sink.profilesProcessed.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.profilesProcessed.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.commitsTotal))
	require.Equal(t, 25.0, testutil.ToFloat64(sink.committedRecords))
	require.Equal(t, 1, testutil.CollectAndCount(sink.profileDuration, "harvester_profile_duration_seconds"))
	require.Equal(t, 1, testutil.CollectAndCount(sink.runDuration, "harvester_run_duration_seconds"))
}

func TestNewPrometheusSink_DuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}

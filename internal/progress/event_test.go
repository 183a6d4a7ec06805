package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validEvent(stage Stage) Event {
	return Event{
		RunID: uuid.New(),
		TS:    time.Now().UTC(),
		Stage: stage,
		Batch: "W22",
		URL:   "https://www.ycombinator.com/founders/jane-doe",
	}
}

func TestEvent_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Event)
		wantErr string
	}{
		{name: "valid run start", mutate: func(e *Event) { e.Stage = StageRunStart }},
		{name: "valid commit", mutate: func(e *Event) { e.Stage = StageCommit }},
		{
			name:    "missing run id",
			mutate:  func(e *Event) { e.RunID = uuid.Nil },
			wantErr: "run id",
		},
		{
			name:    "missing timestamp",
			mutate:  func(e *Event) { e.TS = time.Time{} },
			wantErr: "timestamp",
		},
		{
			name:    "batch done without batch",
			mutate:  func(e *Event) { e.Stage = StageBatchDone; e.Batch = "" },
			wantErr: "requires batch",
		},
		{
			name:    "profile done without url",
			mutate:  func(e *Event) { e.Stage = StageProfileDone; e.URL = "" },
			wantErr: "require url",
		},
		{
			name:    "unknown stage",
			mutate:  func(e *Event) { e.Stage = "TEA_BREAK" },
			wantErr: "unknown stage",
		},
		{
			name:    "negative duration",
			mutate:  func(e *Event) { e.Stage = StageProfileDone; e.Dur = -time.Second },
			wantErr: "duration",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			evt := validEvent(StageProfileDone)
			tc.mutate(&evt)
			err := evt.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

type captureWriter struct {
	object string
	data   []byte
	err    error
}

func (w *captureWriter) Save(_ context.Context, objectName string, data []byte) error {
	if w.err != nil {
		return w.err
	}
	w.object = objectName
	w.data = data
	return nil
}

func TestGCS_Publish_UploadsSnapshot(t *testing.T) {
	t.Parallel()

	writer := &captureWriter{}
	s := NewGCS(writer, "snapshots/founders.json")

	rows := [][]string{founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe")}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, rows))

	require.Equal(t, "snapshots/founders.json", writer.object)

	var objects []map[string]string
	require.NoError(t, json.Unmarshal(writer.data, &objects))
	require.Len(t, objects, 1)
	require.Equal(t, "Jane Doe", objects[0]["name"])
}

func TestGCS_Publish_SaveErrorPropagates(t *testing.T) {
	t.Parallel()

	writer := &captureWriter{err: errors.New("bucket gone")}
	s := NewGCS(writer, "snapshots/founders.json")

	err := s.Publish(context.Background(), harvest.RecordHeader, nil)
	require.ErrorContains(t, err, "bucket gone")
}

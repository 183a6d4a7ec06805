package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SnapshotSink receives the current record snapshot as pre-stringified rows.
// Adapters live in internal/sink.
type SnapshotSink interface {
	Name() string
	Publish(ctx context.Context, header []string, rows [][]string) error
}

// SinkStatus tracks one sink's delivery history across commits.
type SinkStatus struct {
	Name        string    `json:"name"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Failures    int       `json:"failures"`
}

// Committer serializes store state into the durable checkpoint and fans the
// snapshot out to every configured sink. Sinks are isolated from each other
// and from the checkpoint: a failing sink is logged and recorded in its
// status, and the next commit retries it.
type Committer struct {
	checkpoint  *CheckpointFile
	sinks       []SnapshotSink
	sinkTimeout time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	status map[string]*SinkStatus
}

// NewCommitter builds a Committer over the checkpoint file and sink set.
func NewCommitter(checkpoint *CheckpointFile, sinks []SnapshotSink, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Committer{
		checkpoint:  checkpoint,
		sinks:       sinks,
		sinkTimeout: 60 * time.Second,
		logger:      logger,
	}
	c.status = make(map[string]*SinkStatus, len(sinks))
	for _, s := range sinks {
		c.status[s.Name()] = &SinkStatus{Name: s.Name()}
	}
	return c
}

// Commit writes the checkpoint atomically, then attempts delivery to each
// sink in turn. Only the checkpoint write can return an error; sink failures
// never propagate.
func (c *Committer) Commit(ctx context.Context, cp Checkpoint, rows [][]string) error {
	if err := c.checkpoint.Write(cp); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	for _, sink := range c.sinks {
		c.deliver(ctx, sink, rows)
	}
	return nil
}

func (c *Committer) deliver(ctx context.Context, sink SnapshotSink, rows [][]string) {
	sinkCtx, cancel := context.WithTimeout(ctx, c.sinkTimeout)
	defer cancel()

	err := sink.Publish(sinkCtx, RecordHeader, rows)

	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.status[sink.Name()]
	if err != nil {
		st.LastError = err.Error()
		st.Failures++
		c.logger.Warn("Sink publish failed",
			zap.String("sink", sink.Name()), zap.Error(err))
		return
	}
	st.LastSuccess = time.Now().UTC()
	st.LastError = ""
}

// Status returns a copy of every sink's delivery status, ordered as the sinks
// were configured.
func (c *Committer) Status() []SinkStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SinkStatus, 0, len(c.sinks))
	for _, s := range c.sinks {
		out = append(out, *c.status[s.Name()])
	}
	return out
}

package harvest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seedscout/founder-harvest/internal/progress"
)

// RecordPublisher pushes per-record events to an external topic. The topic
// may be empty, in which case nothing is published.
type RecordPublisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RunState is the orchestrator's lifecycle phase.
type RunState string

// Run lifecycle states. A run passes through them in order exactly once.
const (
	StateIdle        RunState = "idle"
	StateDiscovering RunState = "discovering"
	StateExtracting  RunState = "extracting"
	StateDraining    RunState = "draining"
	StateTerminal    RunState = "terminal"
)

// finalCommitTimeout bounds the draining commit, which runs on a fresh
// context because the run context is typically already canceled there.
const finalCommitTimeout = 2 * time.Minute

// Orchestrator sequences a complete harvest run: discovery over all requested
// batches, extraction of the unprocessed frontier, identity merge, and
// checkpointed publish. It owns all mutable run state; components receive
// state through calls, never through shared globals.
type Orchestrator struct {
	cfg        Config
	discoverer *Discoverer
	processor  *Processor
	committer  *Committer
	publisher  RecordPublisher
	topic      string
	emitter    progress.Emitter
	pauser     Pauser
	logger     *zap.Logger
	runID      uuid.UUID
	now        func() time.Time

	mu        sync.Mutex
	state     RunState
	store     *Store
	processed map[string]struct{}
	counters  Counters
}

// NewOrchestrator wires the pipeline. publisher may be nil; emitter may be
// nil, in which case progress events are discarded.
func NewOrchestrator(
	cfg Config,
	discoverer *Discoverer,
	processor *Processor,
	committer *Committer,
	publisher RecordPublisher,
	topic string,
	emitter progress.Emitter,
	logger *zap.Logger,
) *Orchestrator {
	if emitter == nil {
		emitter = progress.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:        cfg,
		discoverer: discoverer,
		processor:  processor,
		committer:  committer,
		publisher:  publisher,
		topic:      topic,
		emitter:    emitter,
		pauser:     timerPauser{},
		logger:     logger,
		runID:      uuid.New(),
		now:        time.Now,
		state:      StateIdle,
		store:      NewStore(),
		processed:  make(map[string]struct{}),
	}
}

// RunProgress is a point-in-time view of the run for status reporting.
type RunProgress struct {
	RunID    string       `json:"run_id"`
	State    RunState     `json:"state"`
	Counters Counters     `json:"counters"`
	Records  int          `json:"records"`
	Sinks    []SinkStatus `json:"sinks"`
}

// Progress returns the current run snapshot. Safe for concurrent use.
func (o *Orchestrator) Progress() RunProgress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return RunProgress{
		RunID:    o.runID.String(),
		State:    o.state,
		Counters: o.counters,
		Records:  o.store.Len(),
		Sinks:    o.committer.Status(),
	}
}

// Run executes the full harvest. Cancellation at any suspension point still
// reaches the draining commit, so progress up to the last checkpoint is never
// lost. Run returns nil on both completion and interruption; only state-load
// anomalies are logged, never fatal.
func (o *Orchestrator) Run(ctx context.Context) error {
	started := o.now()
	o.emitter.Emit(o.event(progress.StageRunStart))

	o.loadPriorState()

	o.setState(StateDiscovering)
	queue := o.discoverFrontier(ctx)

	o.setState(StateExtracting)
	o.processQueue(ctx, queue)

	o.setState(StateDraining)
	drainCtx, cancelDrain := o.drainContext()
	o.commit(drainCtx)
	cancelDrain()

	o.setState(StateTerminal)
	evt := o.event(progress.StageRunDone)
	evt.Dur = o.now().Sub(started)
	o.emitter.Emit(evt)

	o.mu.Lock()
	counters := o.counters
	records := o.store.Len()
	o.mu.Unlock()
	o.logger.Info("Run finished",
		zap.String("run_id", o.runID.String()),
		zap.Int("records", records),
		zap.Int("extracted", counters.Extracted),
		zap.Int("failed", counters.Failed),
		zap.Int("skipped", counters.Skipped),
		zap.Bool("interrupted", ctx.Err() != nil),
	)
	return nil
}

// loadPriorState seeds the store and processed set from the last checkpoint.
// A corrupt checkpoint degrades to an empty start.
func (o *Orchestrator) loadPriorState() {
	cp, err := o.committer.checkpoint.Load()
	if err != nil {
		if errors.Is(err, ErrCheckpointCorrupt) {
			o.logger.Warn("Prior checkpoint unreadable; starting empty", zap.Error(err))
			return
		}
		o.logger.Warn("Checkpoint load failed; starting empty", zap.Error(err))
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.Load(cp.Data)
	for _, url := range cp.ProcessedURLs {
		o.processed[url] = struct{}{}
	}
	if len(cp.Data) > 0 || len(cp.ProcessedURLs) > 0 {
		o.logger.Info("Checkpoint loaded",
			zap.Int("records", len(cp.Data)),
			zap.Int("processed_urls", len(cp.ProcessedURLs)))
	}
}

// discoverFrontier runs discovery over every requested batch and returns the
// unprocessed queue in sorted order, so runs are reproducible.
func (o *Orchestrator) discoverFrontier(ctx context.Context) []string {
	batches := o.cfg.Batches
	if len(batches) == 0 {
		batches = AllBatches()
	}

	frontier := make(map[string]struct{})
	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		links := o.discoverer.Discover(ctx, batch)
		for _, link := range links {
			frontier[link] = struct{}{}
		}
		evt := o.event(progress.StageBatchDone)
		evt.Batch = string(batch)
		evt.Count = len(links)
		o.emitter.Emit(evt)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.counters.Discovered = len(frontier)
	queue := make([]string, 0, len(frontier))
	for url := range frontier {
		if _, done := o.processed[url]; done {
			o.counters.Skipped++
			continue
		}
		queue = append(queue, url)
	}
	sort.Strings(queue)
	o.logger.Info("Frontier computed",
		zap.Int("discovered", len(frontier)),
		zap.Int("queued", len(queue)),
		zap.Int("skipped", o.counters.Skipped))
	return queue
}

func (o *Orchestrator) processQueue(ctx context.Context, queue []string) {
	for _, url := range queue {
		if ctx.Err() != nil {
			return
		}
		o.processOne(ctx, url)
		o.pauser.Pause(ctx, o.cfg.PolitenessPause)
	}
}

func (o *Orchestrator) processOne(ctx context.Context, url string) {
	started := o.now()
	rec, err := o.processor.Process(ctx, url)
	switch {
	case err == nil:
		o.recordSuccess(ctx, url, rec, o.now().Sub(started))
	case errors.Is(err, ErrExhausted):
		o.recordFailure(url, err)
	default:
		// Canceled mid-attempt; leave the URL unprocessed for the next run.
		o.logger.Debug("Profile processing interrupted",
			zap.String("url", url), zap.Error(err))
	}
}

func (o *Orchestrator) recordSuccess(ctx context.Context, url string, rec ProfileRecord, dur time.Duration) {
	o.mu.Lock()
	o.store.Upsert(rec)
	o.processed[url] = struct{}{}
	o.counters.Extracted++
	extracted := o.counters.Extracted
	o.mu.Unlock()

	o.logger.Info("Profile captured",
		zap.String("name", rec.Name),
		zap.String("company", rec.CompanyName),
		zap.String("url", url))

	evt := o.event(progress.StageProfileDone)
	evt.URL = url
	evt.Dur = dur
	o.emitter.Emit(evt)

	o.publishRecord(ctx, rec)

	if extracted%o.cfg.CommitEvery == 0 {
		o.commit(ctx)
	}
}

func (o *Orchestrator) recordFailure(url string, err error) {
	o.mu.Lock()
	o.processed[url] = struct{}{}
	o.counters.Failed++
	o.mu.Unlock()

	o.logger.Warn("Profile exhausted", zap.String("url", url), zap.Error(err))

	evt := o.event(progress.StageProfileFailed)
	evt.URL = url
	evt.Note = err.Error()
	o.emitter.Emit(evt)
}

func (o *Orchestrator) publishRecord(ctx context.Context, rec ProfileRecord) {
	if o.publisher == nil || o.topic == "" {
		return
	}
	payload := map[string]any{
		"run_id":    o.runID.String(),
		"url":       rec.SourceURL,
		"name":      rec.Name,
		"company":   rec.CompanyName,
		"batch":     rec.Batch,
		"timestamp": o.now().UTC().Format(time.RFC3339),
	}
	if _, err := o.publisher.Publish(ctx, o.topic, payload); err != nil {
		o.logger.Warn("Record publish failed",
			zap.String("url", rec.SourceURL), zap.Error(err))
	}
}

// commit snapshots the store plus processed set and hands them to the
// committer. Commit errors are logged; they never abort the run.
func (o *Orchestrator) commit(ctx context.Context) {
	o.mu.Lock()
	cp := Checkpoint{
		Data:          o.store.Snapshot(),
		ProcessedURLs: o.processedList(),
	}
	rows := o.store.Rows()
	o.mu.Unlock()

	if err := o.committer.Commit(ctx, cp, rows); err != nil {
		o.logger.Error("Checkpoint commit failed", zap.Error(err))
		return
	}

	o.mu.Lock()
	o.counters.Commits++
	o.mu.Unlock()

	evt := o.event(progress.StageCommit)
	evt.Count = len(cp.Data)
	o.emitter.Emit(evt)
}

// processedList must be called with o.mu held.
func (o *Orchestrator) processedList() []string {
	urls := make([]string, 0, len(o.processed))
	for url := range o.processed {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// drainContext returns a context for the final commit that survives run
// cancellation. The caller must call cancel once the commit returns.
func (o *Orchestrator) drainContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), finalCommitTimeout)
}

func (o *Orchestrator) setState(s RunState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.logger.Debug("Run state changed", zap.String("state", string(s)))
}

func (o *Orchestrator) event(stage progress.Stage) progress.Event {
	return progress.Event{
		RunID: o.runID,
		TS:    o.now().UTC(),
		Stage: stage,
	}
}

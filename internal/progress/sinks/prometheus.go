package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seedscout/founder-harvest/internal/progress"
)

// PrometheusSink exports harvester progress metrics. It owns all collectors
// for runs, per-batch discovery, profile outcomes, and commits.
type PrometheusSink struct {
	runsStarted       prometheus.Counter
	runsCompleted     prometheus.Counter
	runDuration       prometheus.Histogram
	batchProfiles     *prometheus.CounterVec
	profilesProcessed *prometheus.CounterVec
	profileDuration   prometheus.Histogram
	commitsTotal      prometheus.Counter
	committedRecords  prometheus.Gauge
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_runs_started_total",
			Help: "Total harvest runs started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_runs_completed_total",
			Help: "Total harvest runs completed.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{10, 60, 300, 900, 1800, 3600, 7200},
		}),
		batchProfiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_batch_profiles_discovered_total",
			Help: "Profile URLs discovered, partitioned by batch.",
		}, []string{"batch"}),
		profilesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_profiles_processed_total",
			Help: "Profile completions partitioned by result.",
		}, []string{"result"}),
		profileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_profile_duration_seconds",
			Help:    "Per-profile processing time, retries included.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		commitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_commits_total",
			Help: "Checkpoint commits performed.",
		}),
		committedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harvester_committed_records",
			Help: "Records in the most recent checkpoint.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.batchProfiles,
		s.profilesProcessed,
		s.profileDuration,
		s.commitsTotal,
		s.committedRecords,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsCompleted.Inc()
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageBatchDone:
		s.batchProfiles.WithLabelValues(evt.Batch).Add(float64(evt.Count))
	case progress.StageProfileDone:
		s.profilesProcessed.WithLabelValues("success").Inc()
		if evt.Dur > 0 {
			s.profileDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageProfileFailed:
		s.profilesProcessed.WithLabelValues("failed").Inc()
	case progress.StageCommit:
		s.commitsTotal.Inc()
		s.committedRecords.Set(float64(evt.Count))
	}
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

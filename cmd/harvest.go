package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seedscout/founder-harvest/internal/api"
	"github.com/seedscout/founder-harvest/internal/browser"
	"github.com/seedscout/founder-harvest/internal/fetch"
	"github.com/seedscout/founder-harvest/internal/harvest"
	"github.com/seedscout/founder-harvest/internal/progress"
	progresssinks "github.com/seedscout/founder-harvest/internal/progress/sinks"
	pubsubpublisher "github.com/seedscout/founder-harvest/internal/publisher/pubsub"
	"github.com/seedscout/founder-harvest/internal/sink"
)

// newHarvestCmd creates and configures the 'harvest' subcommand, which runs a
// complete discovery and extraction pass over the configured batches.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Runs a full harvest over the configured batches",
		Long: `Discovers founder profile links batch by batch, extracts each profile,
and commits the accumulated records to every enabled sink. Interrupting the
run with SIGINT or SIGTERM still performs a final commit, and the next run
resumes from the saved checkpoint.`,

		RunE: runHarvestCommand,
	}

	cmd.Flags().StringSlice("batches", nil, "batch codes to harvest (default: all known batches)")
	cmd.Flags().Bool("headless", true, "run the browser headless")
	cmd.Flags().Bool("probe-first", true, "try a plain HTTP fetch before the browser")
	cmd.Flags().String("status-addr", "", "listen address for the status API (empty disables)")

	for key, flag := range map[string]string{
		"harvester.batches":     "batches",
		"harvester.headless":    "headless",
		"harvester.probe_first": "probe-first",
		"status.addr":           "status-addr",
	} {
		cobra.CheckErr(viper.BindPFlag(key, cmd.Flags().Lookup(flag)))
	}
	return cmd
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	logger := rootLogger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := harvest.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load harvest config: %w", err)
	}

	session, err := browser.NewSession(browser.Config{
		UserAgent:         cfg.UserAgent,
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("init browser session: %w", err)
	}
	defer session.Close()

	loader := fetch.NewLoader(
		fetch.NewProber(fetch.ProberConfig{UserAgent: cfg.UserAgent}),
		fetch.NewHeuristic(0),
		session,
		cfg.ProbeFirst,
		logger,
	)

	checkpoint, err := harvest.NewCheckpointFile(cfg.OutputDir, cfg.CheckpointFile)
	if err != nil {
		return fmt.Errorf("init checkpoint: %w", err)
	}
	snapshotSinks, closeSinks, err := buildSinks(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init sinks: %w", err)
	}
	defer closeSinks()
	committer := harvest.NewCommitter(checkpoint, snapshotSinks, logger)

	registry := prometheus.NewRegistry()
	promSink, err := progresssinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger},
		progresssinks.NewLogSink(logger), promSink)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			logger.Warn("Progress hub close failed", zap.Error(err))
		}
	}()

	recordPublisher, closePublisher, topic, err := buildPublisher(ctx, logger)
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}
	defer closePublisher()

	orch := harvest.NewOrchestrator(
		cfg,
		harvest.NewDiscoverer(session, cfg, logger),
		harvest.NewProcessor(loader, cfg, logger),
		committer,
		recordPublisher,
		topic,
		hub,
		logger,
	)

	stopStatus := startStatusServer(orch, registry, logger)
	defer stopStatus()

	if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run harvest: %w", err)
	}
	return nil
}

// buildSinks constructs every enabled snapshot sink. Sink construction
// failures are fatal: a misconfigured destination should stop the run before
// any page is fetched, not at the first commit.
func buildSinks(ctx context.Context, cfg harvest.Config, logger *zap.Logger) ([]harvest.SnapshotSink, func(), error) {
	var (
		sinks   []harvest.SnapshotSink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	outputPath := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(cfg.OutputDir, p)
	}

	if viper.GetBool("sinks.json.enabled") {
		s, err := sink.NewJSONFile(outputPath(viper.GetString("sinks.json.path")))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}
	if viper.GetBool("sinks.xlsx.enabled") {
		s, err := sink.NewXLSX(outputPath(viper.GetString("sinks.xlsx.path")))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}
	if viper.GetBool("sinks.notion.enabled") {
		token := viper.GetString("sinks.notion.token")
		database := viper.GetString("sinks.notion.database")
		if token == "" || database == "" {
			closeAll()
			return nil, nil, fmt.Errorf("sinks.notion requires token and database")
		}
		sinks = append(sinks, sink.NewNotion(token, database))
	}
	if viper.GetBool("sinks.ftp.enabled") {
		addr := viper.GetString("sinks.ftp.addr")
		if addr == "" {
			closeAll()
			return nil, nil, fmt.Errorf("sinks.ftp.addr is required")
		}
		sinks = append(sinks, sink.NewFTP(sink.FTPConfig{
			Addr:       addr,
			User:       viper.GetString("sinks.ftp.user"),
			Password:   viper.GetString("sinks.ftp.password"),
			RemotePath: viper.GetString("sinks.ftp.remote_path"),
			Timeout:    viper.GetDuration("sinks.ftp.timeout"),
		}))
	}
	if viper.GetBool("sinks.gcs.enabled") {
		bucket, err := sink.NewGCSBucket(ctx, viper.GetString("sinks.gcs.bucket"), logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := bucket.Close(); err != nil {
				logger.Warn("GCS client close failed", zap.Error(err))
			}
		})
		sinks = append(sinks, sink.NewGCS(bucket, viper.GetString("sinks.gcs.object")))
	}
	if viper.GetBool("sinks.postgres.enabled") {
		s, err := sink.NewPostgres(ctx, sink.PostgresConfig{
			DSN:   viper.GetString("sinks.postgres.dsn"),
			Table: viper.GetString("sinks.postgres.table"),
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, s.Close)
		sinks = append(sinks, s)
	}
	return sinks, closeAll, nil
}

// buildPublisher wires the Pub/Sub record publisher when a topic is
// configured. An empty topic disables publishing entirely.
func buildPublisher(ctx context.Context, logger *zap.Logger) (harvest.RecordPublisher, func(), string, error) {
	topic := viper.GetString("publisher.topic")
	if topic == "" {
		return nil, func() {}, "", nil
	}
	project := viper.GetString("publisher.project")
	if project == "" {
		return nil, nil, "", fmt.Errorf("publisher.project is required when publisher.topic is set")
	}
	pub, err := pubsubpublisher.New(ctx, project)
	if err != nil {
		return nil, nil, "", err
	}
	closer := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Publisher close failed", zap.Error(err))
		}
	}
	return pub, closer, topic, nil
}

// startStatusServer exposes the status API when configured. The returned
// function shuts the server down.
func startStatusServer(orch *harvest.Orchestrator, registry *prometheus.Registry, logger *zap.Logger) func() {
	addr := viper.GetString("status.addr")
	if addr == "" {
		return func() {}
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(orch, registry, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Status API listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status API failed", zap.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Status API shutdown failed", zap.Error(err))
		}
	}
}

package daemon

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"clipper/internal/captions"
	"clipper/internal/config"
	"clipper/internal/download"
	"clipper/internal/jobs"
	"clipper/internal/logging"
	"clipper/internal/media/silence"
	"clipper/internal/pipeline"
	"clipper/internal/recordstore"
	"clipper/internal/services/whisper"
	"clipper/internal/storage"
)

// Daemon owns the job registry, the pipeline orchestrator, and the API
// server, and ties their lifecycles together.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *jobs.Store
	orch   *pipeline.Orchestrator
	api    *apiServer
}

// New wires a daemon from configuration: real media tools, the configured
// storage backend, and the Supabase record notifier.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	store, err := jobs.Open()
	if err != nil {
		return nil, fmt.Errorf("open job registry: %w", err)
	}

	uploader, err := storage.NewUploader(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	whisperClient := whisper.NewClient(cfg.Processing.WhisperBinary)
	deps := pipeline.Deps{
		Store:    store,
		Notifier: recordstore.NewNotifier(cfg),
		Fetcher:  download.NewFetcher(download.DefaultClient()),
		Remover:  silence.NewRemover(cfg.Processing.FFmpegBinary, cfg.Processing.FFprobeBinary, logger),
		Captions: captions.NewGenerator(whisperClient, cfg.Processing.FFmpegBinary, cfg.Processing.WhisperModel, cfg.Processing.BilingualSource, logger),
		Uploader: uploader,
	}
	return newWithDeps(cfg, deps, logger), nil
}

// newWithDeps wires a daemon around explicit pipeline dependencies (used in
// tests to substitute stub adapters).
func newWithDeps(cfg *config.Config, deps pipeline.Deps, logger *slog.Logger) *Daemon {
	orch := pipeline.New(cfg, deps, logger)
	return &Daemon{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "daemon"),
		store:  deps.Store,
		orch:   orch,
		api:    newAPIServer(cfg.Paths.APIBind, deps.Store, orch, logger),
	}
}

// Start brings up the API server. It returns once the listener is bound;
// processing happens on background goroutines until Stop.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	if err := d.api.start(ctx); err != nil {
		return err
	}
	d.logger.Info("daemon started",
		logging.String("api_bind", d.api.addr()),
		logging.Int("max_concurrent_jobs", d.cfg.Workflow.MaxConcurrentJobs))
	return nil
}

// Addr returns the bound API address.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Stop shuts the API server down, waits for in-flight jobs, and closes the
// registry. In-memory job state is discarded.
func (d *Daemon) Stop() {
	d.api.stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.orch.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("orchestrator shutdown timed out", logging.Error(err))
	}

	if err := d.store.Close(); err != nil {
		d.logger.Warn("close job registry", logging.Error(err))
	}
	d.logger.Info("daemon stopped")
}

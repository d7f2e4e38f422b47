package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"clipper/internal/captions"
	"clipper/internal/config"
	"clipper/internal/jobs"
	"clipper/internal/logging"
	"clipper/internal/media/silence"
	"clipper/internal/recordstore"
	"clipper/internal/services"
)

// Fetcher downloads source media to local disk.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

// SilenceRemover trims silent stretches out of a media file.
type SilenceRemover interface {
	Remove(ctx context.Context, inputPath, outputPath string, opts silence.Options) (silence.Result, error)
}

// CaptionGenerator produces subtitle artifacts for a media file.
type CaptionGenerator interface {
	GenerateBilingual(ctx context.Context, inputPath, outputDir, model string) (captions.BilingualResult, error)
}

// Uploader pushes the trimmed media to remote storage.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// Deps bundles the capabilities the orchestrator drives.
type Deps struct {
	Store    *jobs.Store
	Notifier recordstore.Notifier
	Fetcher  Fetcher
	Remover  SilenceRemover
	Captions CaptionGenerator
	Uploader Uploader
}

// Orchestrator advances each submitted job through the processing stages:
// download, silence removal, captioning, upload. Each job runs in its own
// goroutine; a semaphore bounds how many process concurrently.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	rootCtx context.Context
	cancel  context.CancelFunc
	sem     chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New constructs an orchestrator. Jobs submitted later are processed on a
// context owned by the orchestrator, not the submitting request.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Orchestrator {
	rootCtx, cancel := context.WithCancel(context.Background())
	maxJobs := cfg.Workflow.MaxConcurrentJobs
	if maxJobs < 1 {
		maxJobs = 1
	}
	return &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		rootCtx: rootCtx,
		cancel:  cancel,
		sem:     make(chan struct{}, maxJobs),
	}
}

// Submit registers a job for the request and schedules it for processing.
func (o *Orchestrator) Submit(ctx context.Context, req jobs.Request) (*jobs.Job, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, services.Wrap(services.ErrConfiguration, "pending", "submit", "orchestrator is shut down", nil)
	}
	o.mu.Unlock()

	job, err := o.deps.Store.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
		o.process(job.ID, req)
	}()

	return job, nil
}

// Shutdown stops accepting jobs and waits for in-flight jobs to finish, up
// to the context deadline.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.cancel()
		return ctx.Err()
	}
}

// jobResult is the merged payload stored on a completed job.
type jobResult struct {
	OutputURL      string                   `json:"output_url,omitempty"`
	SilenceRemoval silence.Result           `json:"silence_removal"`
	Captions       captions.BilingualResult `json:"captions"`
}

func (o *Orchestrator) process(jobID string, req jobs.Request) {
	ctx := services.WithJobID(o.rootCtx, jobID)
	logger := logging.WithContext(ctx, o.logger)

	job, err := o.deps.Store.GetByID(ctx, jobID)
	if err != nil || job == nil {
		logger.Error("job vanished before processing", logging.Error(err))
		return
	}

	jobDir := filepath.Join(o.cfg.Paths.WorkDir, jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		o.fail(ctx, job, fmt.Sprintf("create work directory: %v", err))
		return
	}

	opts, err := job.DecodedOptions()
	if err != nil {
		o.fail(ctx, job, fmt.Sprintf("invalid options: %v", err))
		return
	}

	// Stage: downloading.
	if ctx, err = o.advance(ctx, job, jobs.StageDownloading, "Downloading video..."); err != nil {
		logger.Error("stage transition rejected", logging.Error(err))
		return
	}
	o.notifyProcessing(ctx, job)

	inputPath := filepath.Join(jobDir, "input.mp4")
	if err := o.runStage(ctx, o.cfg.Workflow.DownloadTimeout, func(stageCtx context.Context) error {
		return o.deps.Fetcher.Fetch(stageCtx, req.VideoURL, inputPath)
	}); err != nil {
		o.fail(ctx, job, fmt.Sprintf("failed to download video: %v", err))
		return
	}

	// Stage: removing silence.
	if ctx, err = o.advance(ctx, job, jobs.StageRemovingSilence, "Removing silence..."); err != nil {
		logger.Error("stage transition rejected", logging.Error(err))
		return
	}

	trimmedPath := filepath.Join(jobDir, "no_silence.mp4")
	var silenceResult silence.Result
	if err := o.runStage(ctx, o.cfg.Workflow.SilenceTimeout, func(stageCtx context.Context) error {
		var stageErr error
		silenceResult, stageErr = o.deps.Remover.Remove(stageCtx, inputPath, trimmedPath, silence.Options{
			NoiseThreshold:     firstNonEmpty(opts.NoiseThreshold, o.cfg.Processing.NoiseThreshold),
			MinSilenceDuration: firstPositive(opts.MinSilenceDuration, o.cfg.Processing.MinSilenceDuration),
			Padding:            o.cfg.Processing.SilencePadding,
		})
		return stageErr
	}); err != nil {
		o.fail(ctx, job, fmt.Sprintf("silence removal failed: %v", err))
		return
	}
	if !silenceResult.Success {
		o.fail(ctx, job, "silence removal failed: "+silenceResult.Error)
		return
	}

	// Stage: generating captions. A caption failure degrades the result
	// instead of failing the job; the trimmed media is still worth keeping.
	if ctx, err = o.advance(ctx, job, jobs.StageGeneratingCaptions, "Generating captions..."); err != nil {
		logger.Error("stage transition rejected", logging.Error(err))
		return
	}

	captionsDir := filepath.Join(jobDir, "captions")
	var captionResult captions.BilingualResult
	if err := o.runStage(ctx, o.cfg.Workflow.CaptionTimeout, func(stageCtx context.Context) error {
		var stageErr error
		captionResult, stageErr = o.deps.Captions.GenerateBilingual(stageCtx, trimmedPath, captionsDir, opts.WhisperModel)
		return stageErr
	}); err != nil {
		logger.Warn("caption generation failed, continuing without captions", logging.Error(err))
		captionResult = captions.BilingualResult{Success: false, Error: services.Message(err)}
	}

	// Stage: uploading.
	if ctx, err = o.advance(ctx, job, jobs.StageUploading, "Uploading processed video..."); err != nil {
		logger.Error("stage transition rejected", logging.Error(err))
		return
	}

	var outputURL string
	if err := o.runStage(ctx, o.cfg.Workflow.UploadTimeout, func(stageCtx context.Context) error {
		var stageErr error
		outputURL, stageErr = o.deps.Uploader.Upload(stageCtx, trimmedPath)
		return stageErr
	}); err != nil {
		o.fail(ctx, job, fmt.Sprintf("upload failed: %v", err))
		return
	}

	o.complete(ctx, job, outputURL, silenceResult, captionResult)
}

func (o *Orchestrator) complete(ctx context.Context, job *jobs.Job, outputURL string, silenceResult silence.Result, captionResult captions.BilingualResult) {
	logger := logging.WithContext(ctx, o.logger)

	payload, err := json.Marshal(jobResult{
		OutputURL:      outputURL,
		SilenceRemoval: silenceResult,
		Captions:       captionResult,
	})
	if err != nil {
		o.fail(ctx, job, fmt.Sprintf("encode result: %v", err))
		return
	}

	job.SetCompleted(string(payload), "Processing complete!")
	if err := o.deps.Store.Update(ctx, job); err != nil {
		logger.Error("persist completed job", logging.Error(err))
		return
	}

	metadata := map[string]any{
		"silence_removal": silenceResult,
		"captions": map[string]any{
			"success":       captionResult.Success,
			"language":      captionResult.Original.Language,
			"segment_count": captionResult.Original.SegmentCount,
		},
	}
	if err := o.deps.Notifier.NotifyCompleted(ctx, job.ShapeID, outputURL, metadata); err != nil {
		logger.Warn("record store completed update failed", logging.Error(err))
	}

	logger.Info("job completed",
		logging.String("output_url", outputURL),
		logging.Float64("seconds_removed", silenceResult.SilenceRemoved))
}

func (o *Orchestrator) fail(ctx context.Context, job *jobs.Job, cause string) {
	logger := logging.WithContext(ctx, o.logger)

	job.SetFailed(cause)
	if err := o.deps.Store.Update(ctx, job); err != nil {
		logger.Error("persist failed job", logging.Error(err))
	}
	if err := o.deps.Notifier.NotifyFailed(ctx, job.ShapeID, cause); err != nil {
		logger.Warn("record store failed update failed", logging.Error(err))
	}
	logger.Error("job failed", logging.String("cause", cause))
}

// advance transitions the job, persists it, and returns a context annotated
// with the new stage so downstream log lines carry it.
func (o *Orchestrator) advance(ctx context.Context, job *jobs.Job, stage jobs.Stage, message string) (context.Context, error) {
	if err := job.Advance(stage, message); err != nil {
		return ctx, err
	}
	if err := o.deps.Store.Update(ctx, job); err != nil {
		return ctx, err
	}
	ctx = services.WithStage(ctx, string(stage))
	logging.WithContext(ctx, o.logger).Info("stage started",
		logging.Int("progress", job.Progress))
	return ctx, nil
}

func (o *Orchestrator) notifyProcessing(ctx context.Context, job *jobs.Job) {
	if err := o.deps.Notifier.NotifyProcessing(ctx, job.ShapeID); err != nil {
		logging.WithContext(ctx, o.logger).Warn("record store processing update failed", logging.Error(err))
	}
}

// runStage executes fn under the stage timeout (in seconds; zero or negative
// means no timeout beyond the orchestrator's own lifetime).
func (o *Orchestrator) runStage(ctx context.Context, timeoutSeconds int, fn func(context.Context) error) error {
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}
	return fn(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

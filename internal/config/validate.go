package config

import (
	"fmt"
	"strings"
)

var knownWhisperModels = map[string]struct{}{
	"tiny":   {},
	"base":   {},
	"small":  {},
	"medium": {},
	"large":  {},
}

// Validate checks structural config errors. Missing Supabase credentials are
// not an error here: the record store and uploader degrade to noop/disabled
// behavior so local processing still works.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		problems = append(problems, "paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must be set")
	}

	switch c.Storage.Backend {
	case StorageBackendSupabase:
	case StorageBackendS3:
		if strings.TrimSpace(c.Storage.S3Bucket) == "" {
			problems = append(problems, "storage.s3_bucket must be set when storage.backend is \"s3\"")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.backend must be \"supabase\" or \"s3\", got %q", c.Storage.Backend))
	}

	if _, ok := knownWhisperModels[c.Processing.WhisperModel]; !ok {
		problems = append(problems, fmt.Sprintf("processing.whisper_model %q is not a known model size", c.Processing.WhisperModel))
	}
	if c.Processing.MinSilenceDuration <= 0 {
		problems = append(problems, "processing.min_silence_duration must be positive")
	}
	if c.Processing.SilencePadding < 0 {
		problems = append(problems, "processing.silence_padding must not be negative")
	}

	if c.Workflow.MaxConcurrentJobs < 1 {
		problems = append(problems, "workflow.max_concurrent_jobs must be at least 1")
	}
	for name, value := range map[string]int{
		"workflow.download_timeout": c.Workflow.DownloadTimeout,
		"workflow.silence_timeout":  c.Workflow.SilenceTimeout,
		"workflow.caption_timeout":  c.Workflow.CaptionTimeout,
		"workflow.upload_timeout":   c.Workflow.UploadTimeout,
	} {
		if value <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

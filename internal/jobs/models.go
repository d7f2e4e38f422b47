package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Stage represents the lifecycle of a processing job.
type Stage string

const (
	StagePending            Stage = "pending"
	StageDownloading        Stage = "downloading"
	StageRemovingSilence    Stage = "removing_silence"
	StageGeneratingCaptions Stage = "generating_captions"
	StageUploading          Stage = "uploading"
	StageCompleted          Stage = "completed"
	StageFailed             Stage = "failed"
)

var stageOrder = []Stage{
	StagePending,
	StageDownloading,
	StageRemovingSilence,
	StageGeneratingCaptions,
	StageUploading,
	StageCompleted,
}

// Progress checkpoints reported at stage entry.
var stageProgress = map[Stage]int{
	StagePending:            0,
	StageDownloading:        10,
	StageRemovingSilence:    30,
	StageGeneratingCaptions: 60,
	StageUploading:          85,
	StageCompleted:          100,
}

// AllStages returns the ordered forward progression plus the failed stage.
func AllStages() []Stage {
	out := make([]Stage, 0, len(stageOrder)+1)
	out = append(out, stageOrder...)
	out = append(out, StageFailed)
	return out
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == StageFailed {
		return normalized, true
	}
	for _, stage := range stageOrder {
		if stage == normalized {
			return normalized, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition can leave the stage.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Checkpoint returns the fixed progress value reported at stage entry.
// Failed has no checkpoint; the job keeps its last reported progress.
func (s Stage) Checkpoint() int {
	return stageProgress[s]
}

// CanTransition reports whether moving from one stage to the next respects the
// strict forward order. Failed is reachable from any non-terminal stage.
func CanTransition(from, to Stage) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StageFailed {
		return true
	}
	for i, stage := range stageOrder {
		if stage != from {
			continue
		}
		return i+1 < len(stageOrder) && stageOrder[i+1] == to
	}
	return false
}

// Options carries the recognized per-job processing options. Unrecognized
// request keys are dropped during decoding; missing keys keep the zero value
// and are filled from configuration defaults at submit time.
type Options struct {
	NoiseThreshold     string  `json:"noise_threshold,omitempty"`
	MinSilenceDuration float64 `json:"min_silence_duration,omitempty"`
	WhisperModel       string  `json:"whisper_model,omitempty"`
}

// DecodeOptions extracts recognized option keys from a free-form mapping.
// String and numeric representations of min_silence_duration are both accepted.
func DecodeOptions(raw map[string]any) Options {
	var opts Options
	if raw == nil {
		return opts
	}
	if v, ok := raw["noise_threshold"].(string); ok {
		opts.NoiseThreshold = strings.TrimSpace(v)
	}
	switch v := raw["min_silence_duration"].(type) {
	case float64:
		opts.MinSilenceDuration = v
	case int:
		opts.MinSilenceDuration = float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			opts.MinSilenceDuration = f
		}
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err == nil {
			opts.MinSilenceDuration = f
		}
	}
	if v, ok := raw["whisper_model"].(string); ok {
		opts.WhisperModel = strings.ToLower(strings.TrimSpace(v))
	}
	return opts
}

// Request is a submitted processing request.
type Request struct {
	VideoURL string
	ShapeID  string
	Options  Options
}

// Job represents one submitted processing request tracked in the registry.
type Job struct {
	ID           string
	ShapeID      string
	VideoURL     string
	Stage        Stage
	Progress     int
	Message      string
	ResultJSON   string
	ErrorMessage string
	OptionsJSON  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Advance moves the job to the given stage, setting the stage's progress
// checkpoint and a status message. It refuses transitions that would leave a
// terminal stage or skip forward.
func (j *Job) Advance(stage Stage, message string) error {
	if !CanTransition(j.Stage, stage) {
		return fmt.Errorf("invalid stage transition %s -> %s", j.Stage, stage)
	}
	j.Stage = stage
	if checkpoint := stage.Checkpoint(); checkpoint > j.Progress {
		j.Progress = checkpoint
	}
	j.Message = message
	return nil
}

// SetFailed marks the job as failed with the given cause. Progress keeps its
// last checkpoint so observers never see it regress.
func (j *Job) SetFailed(cause string) {
	j.Stage = StageFailed
	j.ErrorMessage = cause
	j.Message = "Processing failed: " + cause
	j.ResultJSON = ""
}

// SetCompleted marks the job as completed with the merged result payload.
func (j *Job) SetCompleted(resultJSON, message string) {
	j.Stage = StageCompleted
	j.Progress = StageCompleted.Checkpoint()
	j.Message = message
	j.ResultJSON = resultJSON
	j.ErrorMessage = ""
}

// DecodedOptions returns the stored per-job options.
func (j *Job) DecodedOptions() (Options, error) {
	var opts Options
	if strings.TrimSpace(j.OptionsJSON) == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(j.OptionsJSON), &opts); err != nil {
		return opts, fmt.Errorf("decode job options: %w", err)
	}
	return opts, nil
}

// Result decodes the stored result payload, or nil when absent.
func (j *Job) Result() (map[string]any, error) {
	if strings.TrimSpace(j.ResultJSON) == "" {
		return nil, nil
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(j.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return result, nil
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}

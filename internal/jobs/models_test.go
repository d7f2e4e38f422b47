package jobs_test

import (
	"testing"

	"clipper/internal/jobs"
)

func TestCanTransitionForwardOrder(t *testing.T) {
	order := []jobs.Stage{
		jobs.StagePending,
		jobs.StageDownloading,
		jobs.StageRemovingSilence,
		jobs.StageGeneratingCaptions,
		jobs.StageUploading,
		jobs.StageCompleted,
	}
	for i := 0; i < len(order)-1; i++ {
		if !jobs.CanTransition(order[i], order[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", order[i], order[i+1])
		}
	}
	// Skipping a stage is not allowed.
	if jobs.CanTransition(jobs.StagePending, jobs.StageRemovingSilence) {
		t.Fatal("expected pending -> removing_silence to be rejected")
	}
	// Backward transitions are not allowed.
	if jobs.CanTransition(jobs.StageUploading, jobs.StageDownloading) {
		t.Fatal("expected uploading -> downloading to be rejected")
	}
}

func TestCanTransitionToFailed(t *testing.T) {
	for _, stage := range []jobs.Stage{
		jobs.StagePending,
		jobs.StageDownloading,
		jobs.StageRemovingSilence,
		jobs.StageGeneratingCaptions,
		jobs.StageUploading,
	} {
		if !jobs.CanTransition(stage, jobs.StageFailed) {
			t.Fatalf("expected %s -> failed to be allowed", stage)
		}
	}
}

func TestTerminalStagesAbsorb(t *testing.T) {
	for _, terminal := range []jobs.Stage{jobs.StageCompleted, jobs.StageFailed} {
		for _, next := range jobs.AllStages() {
			if jobs.CanTransition(terminal, next) {
				t.Fatalf("expected no transition out of %s, got %s -> %s", terminal, terminal, next)
			}
		}
	}
}

func TestAdvanceSetsCheckpointProgress(t *testing.T) {
	job := &jobs.Job{Stage: jobs.StagePending}
	steps := []struct {
		stage    jobs.Stage
		progress int
	}{
		{jobs.StageDownloading, 10},
		{jobs.StageRemovingSilence, 30},
		{jobs.StageGeneratingCaptions, 60},
		{jobs.StageUploading, 85},
	}
	for _, step := range steps {
		if err := job.Advance(step.stage, "working"); err != nil {
			t.Fatalf("Advance(%s): %v", step.stage, err)
		}
		if job.Progress != step.progress {
			t.Fatalf("progress after %s = %d, want %d", step.stage, job.Progress, step.progress)
		}
	}
}

func TestAdvanceRejectsInvalidTransition(t *testing.T) {
	job := &jobs.Job{Stage: jobs.StageCompleted, Progress: 100}
	if err := job.Advance(jobs.StageUploading, "regress"); err == nil {
		t.Fatal("expected error advancing out of a terminal stage")
	}
}

func TestSetFailedKeepsProgress(t *testing.T) {
	job := &jobs.Job{Stage: jobs.StageUploading, Progress: 85}
	job.SetFailed("upload refused")
	if job.Stage != jobs.StageFailed {
		t.Fatalf("stage = %s, want failed", job.Stage)
	}
	if job.Progress != 85 {
		t.Fatalf("progress regressed to %d on failure", job.Progress)
	}
	if job.ErrorMessage != "upload refused" {
		t.Fatalf("error = %q", job.ErrorMessage)
	}
	if job.ResultJSON != "" {
		t.Fatal("failed job must not carry a result")
	}
}

func TestSetCompleted(t *testing.T) {
	job := &jobs.Job{Stage: jobs.StageUploading, Progress: 85}
	job.SetCompleted(`{"output_url":"https://example/x.mp4"}`, "Processing complete!")
	if job.Stage != jobs.StageCompleted || job.Progress != 100 {
		t.Fatalf("stage=%s progress=%d, want completed/100", job.Stage, job.Progress)
	}
	if job.ErrorMessage != "" {
		t.Fatal("completed job must not carry an error")
	}
	result, err := job.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result["output_url"] != "https://example/x.mp4" {
		t.Fatalf("result = %v", result)
	}
}

func TestDecodeOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want jobs.Options
	}{
		{
			name: "all recognized",
			raw: map[string]any{
				"noise_threshold":      "-25dB",
				"min_silence_duration": 1.5,
				"whisper_model":        "Small",
			},
			want: jobs.Options{NoiseThreshold: "-25dB", MinSilenceDuration: 1.5, WhisperModel: "small"},
		},
		{
			name: "unknown keys ignored",
			raw:  map[string]any{"bitrate": "4M", "noise_threshold": "-40dB"},
			want: jobs.Options{NoiseThreshold: "-40dB"},
		},
		{
			name: "duration as string",
			raw:  map[string]any{"min_silence_duration": "0.75"},
			want: jobs.Options{MinSilenceDuration: 0.75},
		},
		{name: "nil map", raw: nil, want: jobs.Options{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := jobs.DecodeOptions(tc.raw); got != tc.want {
				t.Fatalf("DecodeOptions = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	if stage, ok := jobs.ParseStage(" Removing_Silence "); !ok || stage != jobs.StageRemovingSilence {
		t.Fatalf("ParseStage = %q/%v", stage, ok)
	}
	if _, ok := jobs.ParseStage("exploding"); ok {
		t.Fatal("expected unknown stage to be rejected")
	}
}

package silence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
)

// Options controls silence detection and removal thresholds.
type Options struct {
	// NoiseThreshold is the audio level below which samples count as
	// silence, e.g. "-30dB".
	NoiseThreshold string
	// MinSilenceDuration is the shortest silent stretch worth cutting,
	// in seconds.
	MinSilenceDuration float64
	// Padding widens each detected silence on both sides before cutting,
	// in seconds.
	Padding float64
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.NoiseThreshold) == "" {
		o.NoiseThreshold = "-30dB"
	}
	if o.MinSilenceDuration <= 0 {
		o.MinSilenceDuration = 0.5
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// Result summarizes a removal run.
type Result struct {
	Success          bool    `json:"success"`
	SilencePeriods   int     `json:"silence_periods,omitempty"`
	SilenceRemoved   float64 `json:"silence_removed"`
	OriginalDuration float64 `json:"original_duration"`
	NewDuration      float64 `json:"new_duration"`
	ReductionPercent float64 `json:"reduction_percent,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Remover cuts silent stretches out of a media file by extracting the
// non-silent segments and concatenating them.
type Remover struct {
	ffmpegBinary  string
	ffprobeBinary string
	logger        *slog.Logger
}

// NewRemover builds a Remover around the given ffmpeg and ffprobe binaries.
// Empty binary names fall back to PATH lookup defaults.
func NewRemover(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Remover {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Remover{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, "silence"),
	}
}

// Detect runs ffmpeg silencedetect over the input and returns the silent
// intervals it reports.
func (r *Remover) Detect(ctx context.Context, inputPath string, opts Options) ([]Interval, error) {
	opts = opts.withDefaults()
	filter := fmt.Sprintf("silencedetect=noise=%s:d=%s",
		opts.NoiseThreshold, formatSeconds(opts.MinSilenceDuration))

	cmd := exec.CommandContext(ctx, r.ffmpegBinary,
		"-hide_banner",
		"-i", inputPath,
		"-af", filter,
		"-f", "null",
		"-",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "removing_silence", "silencedetect",
			strings.TrimSpace(string(output)), err)
	}
	return parseDetectOutput(string(output)), nil
}

// Remove detects silence in inputPath and writes a trimmed copy to
// outputPath. Inputs without an audio stream, or with no detected silence,
// are copied verbatim and the result reports zero reduction.
func (r *Remover) Remove(ctx context.Context, inputPath, outputPath string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	probe, err := ffprobe.Inspect(ctx, r.ffprobeBinary, inputPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "removing_silence", "probe input", inputPath, err)
	}
	duration := probe.DurationSeconds()

	if !probe.HasAudio() {
		if err := copyFile(inputPath, outputPath); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "removing_silence", "copy",
				"copy input without audio", err)
		}
		r.logger.Info("input has no audio stream, copied unchanged",
			logging.String("input", inputPath))
		return Result{
			Success:          true,
			OriginalDuration: round2(duration),
			NewDuration:      round2(duration),
		}, nil
	}

	silences, err := r.Detect(ctx, inputPath, opts)
	if err != nil {
		return Result{}, err
	}

	if len(silences) == 0 {
		if err := copyFile(inputPath, outputPath); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "removing_silence", "copy",
				"copy input without silence", err)
		}
		r.logger.Info("no silence detected, copied input unchanged",
			logging.String("input", inputPath))
		return Result{
			Success:          true,
			OriginalDuration: round2(duration),
			NewDuration:      round2(duration),
		}, nil
	}

	kept := keepIntervals(silences, duration, opts.Padding)
	if len(kept) == 0 {
		return Result{Success: false, Error: "no non-silent segments found"}, nil
	}

	tempDir, err := os.MkdirTemp("", "clipper-segments-")
	if err != nil {
		return Result{}, fmt.Errorf("create segment dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	segmentPaths := make([]string, 0, len(kept))
	for i, segment := range kept {
		segmentPath := filepath.Join(tempDir, fmt.Sprintf("segment_%d.mp4", i))
		if err := r.extractSegment(ctx, inputPath, segmentPath, segment); err != nil {
			return Result{}, err
		}
		segmentPaths = append(segmentPaths, segmentPath)
	}

	if err := r.concatSegments(ctx, tempDir, segmentPaths, outputPath); err != nil {
		return Result{}, err
	}

	newDuration, err := r.probeDuration(ctx, outputPath)
	if err != nil {
		return Result{}, err
	}

	removed := duration - newDuration
	result := Result{
		Success:          true,
		SilencePeriods:   len(silences),
		SilenceRemoved:   round2(removed),
		OriginalDuration: round2(duration),
		NewDuration:      round2(newDuration),
	}
	if duration > 0 {
		result.ReductionPercent = round1(removed / duration * 100)
	}
	r.logger.Info("silence removal finished",
		logging.Int("silence_periods", len(silences)),
		logging.Float64("removed_seconds", result.SilenceRemoved),
		logging.Float64("reduction_percent", result.ReductionPercent))
	return result, nil
}

func (r *Remover) probeDuration(ctx context.Context, path string) (float64, error) {
	probe, err := ffprobe.Inspect(ctx, r.ffprobeBinary, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "removing_silence", "probe duration", path, err)
	}
	return probe.DurationSeconds(), nil
}

func (r *Remover) extractSegment(ctx context.Context, inputPath, segmentPath string, segment Interval) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBinary,
		"-y",
		"-hide_banner",
		"-i", inputPath,
		"-ss", formatSeconds(segment.Start),
		"-t", formatSeconds(segment.Duration()),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-avoid_negative_ts", "make_zero",
		segmentPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "removing_silence", "extract segment",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

func (r *Remover) concatSegments(ctx context.Context, tempDir string, segmentPaths []string, outputPath string) error {
	var list strings.Builder
	for _, segmentPath := range segmentPaths {
		fmt.Fprintf(&list, "file '%s'\n", segmentPath)
	}
	concatPath := filepath.Join(tempDir, "concat.txt")
	if err := os.WriteFile(concatPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.ffmpegBinary,
		"-y",
		"-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", concatPath,
		"-c", "copy",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "removing_silence", "concat segments",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

package captions

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipper/internal/language"
	"clipper/internal/logging"
	"clipper/internal/services/whisper"
)

// Transcriber produces timed text segments from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string, req whisper.Request) (whisper.Transcription, error)
}

// Result summarizes one caption track.
type Result struct {
	Success      bool   `json:"success"`
	Language     string `json:"language,omitempty"`
	SRTPath      string `json:"srt_path,omitempty"`
	VTTPath      string `json:"vtt_path,omitempty"`
	JSONPath     string `json:"json_path,omitempty"`
	FullText     string `json:"full_text,omitempty"`
	SegmentCount int    `json:"segment_count,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BilingualResult carries the auto-detected caption track plus an optional
// English translation track when the source language warrants one.
type BilingualResult struct {
	Success            bool    `json:"success"`
	Original           Result  `json:"original"`
	EnglishTranslation *Result `json:"english_translation,omitempty"`
	Error              string  `json:"error,omitempty"`
}

// Generator produces subtitle artifacts (SRT, VTT, transcript JSON) for a
// media file by extracting audio and running it through a Transcriber.
type Generator struct {
	transcriber Transcriber
	// bilingualSource is the spoken language that triggers an extra
	// English translation track.
	bilingualSource string
	ffmpegBinary    string
	model           string
	logger          *slog.Logger
	commandRunner   func(ctx context.Context, name string, args ...string) error
}

// NewGenerator builds a caption generator. model and bilingualSource may be
// empty; they fall back to "base" and "mn".
func NewGenerator(transcriber Transcriber, ffmpegBinary, model, bilingualSource string, logger *slog.Logger) *Generator {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(model) == "" {
		model = whisper.DefaultModel
	}
	if strings.TrimSpace(bilingualSource) == "" {
		bilingualSource = "mn"
	}
	return &Generator{
		transcriber:     transcriber,
		bilingualSource: bilingualSource,
		ffmpegBinary:    ffmpegBinary,
		model:           model,
		logger:          logging.NewComponentLogger(logger, "captions"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (g *Generator) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	g.commandRunner = runner
}

// Generate produces SRT, VTT, and transcript JSON artifacts for inputPath in
// outputDir. An empty model uses the generator's configured model; an empty
// lang lets whisper auto-detect. Artifacts are named {stem}_{lang}.{ext}.
func (g *Generator) Generate(ctx context.Context, inputPath, outputDir, model, lang string) (Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure caption dir: %w", err)
	}
	if model == "" {
		model = g.model
	}

	tempDir, err := os.MkdirTemp("", "clipper-audio-")
	if err != nil {
		return Result{}, fmt.Errorf("create audio dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.wav")
	if err := g.extractAudio(ctx, inputPath, audioPath); err != nil {
		return Result{Success: false, Error: "failed to extract audio from video"}, nil
	}

	transcription, err := g.transcriber.Transcribe(ctx, audioPath, tempDir, whisper.Request{
		Model:    model,
		Language: language.Normalize(lang),
	})
	if err != nil {
		return Result{}, err
	}

	suffix := language.Normalize(lang)
	if suffix == "" {
		suffix = language.Normalize(transcription.Language)
	}
	if suffix == "" {
		suffix = transcription.Language
	}
	stem := mediaStem(inputPath)
	result := Result{
		Success:      true,
		Language:     transcription.Language,
		SRTPath:      filepath.Join(outputDir, fmt.Sprintf("%s_%s.srt", stem, suffix)),
		VTTPath:      filepath.Join(outputDir, fmt.Sprintf("%s_%s.vtt", stem, suffix)),
		JSONPath:     filepath.Join(outputDir, fmt.Sprintf("%s_%s.json", stem, suffix)),
		FullText:     transcription.Text,
		SegmentCount: len(transcription.Segments),
	}

	if err := WriteSRT(transcription.Segments, result.SRTPath); err != nil {
		return Result{}, err
	}
	if err := WriteVTT(transcription.Segments, result.VTTPath); err != nil {
		return Result{}, err
	}
	if err := WriteTranscript(transcription, result.JSONPath); err != nil {
		return Result{}, err
	}

	g.logger.Info("caption track generated",
		logging.String("language", result.Language),
		logging.Int("segments", result.SegmentCount))
	return result, nil
}

// GenerateBilingual produces an auto-detected caption track and, when the
// detected language matches the configured bilingual source, a second track
// translated to English named {stem}_en_translated.{ext}.
func (g *Generator) GenerateBilingual(ctx context.Context, inputPath, outputDir, model string) (BilingualResult, error) {
	original, err := g.Generate(ctx, inputPath, outputDir, model, "")
	if err != nil {
		return BilingualResult{}, err
	}
	if !original.Success {
		return BilingualResult{Success: false, Original: original, Error: original.Error}, nil
	}

	out := BilingualResult{Success: true, Original: original}
	if !language.Matches(original.Language, g.bilingualSource) {
		return out, nil
	}

	g.logger.Info("generating english translation track",
		logging.String("source_language", language.DisplayName(original.Language)))

	translation, err := g.translateTrack(ctx, inputPath, outputDir, model)
	if err != nil {
		return BilingualResult{}, err
	}
	out.EnglishTranslation = &translation
	return out, nil
}

func (g *Generator) translateTrack(ctx context.Context, inputPath, outputDir, model string) (Result, error) {
	if model == "" {
		model = g.model
	}

	tempDir, err := os.MkdirTemp("", "clipper-audio-")
	if err != nil {
		return Result{}, fmt.Errorf("create audio dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.wav")
	if err := g.extractAudio(ctx, inputPath, audioPath); err != nil {
		return Result{Success: false, Error: "failed to extract audio from video"}, nil
	}

	transcription, err := g.transcriber.Transcribe(ctx, audioPath, tempDir, whisper.Request{
		Model: model,
		Task:  whisper.TaskTranslate,
	})
	if err != nil {
		return Result{}, err
	}

	stem := mediaStem(inputPath)
	result := Result{
		Success:      true,
		Language:     "en",
		SRTPath:      filepath.Join(outputDir, stem+"_en_translated.srt"),
		VTTPath:      filepath.Join(outputDir, stem+"_en_translated.vtt"),
		FullText:     transcription.Text,
		SegmentCount: len(transcription.Segments),
	}
	if err := WriteSRT(transcription.Segments, result.SRTPath); err != nil {
		return Result{}, err
	}
	if err := WriteVTT(transcription.Segments, result.VTTPath); err != nil {
		return Result{}, err
	}
	return result, nil
}

// extractAudio pulls a mono 16kHz WAV out of the input, the sample format
// whisper expects.
func (g *Generator) extractAudio(ctx context.Context, inputPath, audioPath string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	}
	if g.commandRunner != nil {
		return g.commandRunner(ctx, g.ffmpegBinary, args...)
	}
	cmd := exec.CommandContext(ctx, g.ffmpegBinary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("extract audio: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func mediaStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

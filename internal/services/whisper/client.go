package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TaskTranslate asks whisper to translate speech into English instead of
// transcribing it verbatim.
const TaskTranslate = "translate"

// DefaultModel is the model size used when the request leaves it blank.
const DefaultModel = "base"

// Request configures a transcription run.
type Request struct {
	// Model is the whisper model size (tiny, base, small, medium, large).
	Model string
	// Language pins the spoken language; empty means auto-detect.
	Language string
	// Task is either empty (transcribe) or TaskTranslate.
	Task string
}

// Segment is a timed span of transcribed text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the structured outcome of a whisper run.
type Transcription struct {
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Client runs the whisper CLI and parses its JSON output.
type Client struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewClient creates a whisper client around the given binary. An empty
// binary name falls back to "whisper" on PATH.
func NewClient(binary string) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = "whisper"
	}
	return &Client{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	c.commandRunner = runner
}

// Transcribe runs whisper over the audio file, writing its JSON output into
// outputDir, and returns the parsed transcription.
func (c *Client) Transcribe(ctx context.Context, audioPath, outputDir string, req Request) (Transcription, error) {
	var result Transcription

	if strings.TrimSpace(audioPath) == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if err := c.run(ctx, c.binary, c.buildArgs(audioPath, outputDir, req)...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return LoadTranscription(jsonPath)
}

func (c *Client) buildArgs(audioPath, outputDir string, req Request) []string {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	args := []string{
		audioPath,
		"--model", model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--word_timestamps", "True",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if req.Task != "" {
		args = append(args, "--task", req.Task)
	}
	return args
}

func (c *Client) run(ctx context.Context, name string, args ...string) error {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// LoadTranscription parses a whisper JSON output file.
func LoadTranscription(jsonPath string) (Transcription, error) {
	var result Transcription
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, fmt.Errorf("read whisper output: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("parse whisper json: %w", err)
	}
	if result.Language == "" {
		result.Language = "unknown"
	}
	return result, nil
}

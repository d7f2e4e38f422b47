package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/logging"
	"clipper/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "clipper.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("pipeline ready", logging.String("component", "daemon"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "pipeline ready") {
		t.Fatalf("log output missing message: %q", content)
	}
	if !strings.Contains(content, "daemon:") {
		t.Fatalf("console handler should promote component prefix: %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONFormat(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "clipper.json")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("probe complete", logging.Float64("duration", 12.5))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{`"msg":"probe complete"`, `"level":"debug"`, `"duration":12.5`} {
		if !strings.Contains(content, want) {
			t.Fatalf("json output missing %q: %q", want, content)
		}
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "abc-123")
	ctx = services.WithStage(ctx, "downloading")

	fields := logging.ContextFields(ctx)
	keys := make(map[string]bool, len(fields))
	for _, attr := range fields {
		keys[attr.Key] = true
	}
	if !keys[logging.FieldJobID] || !keys[logging.FieldStage] {
		t.Fatalf("expected job_id and stage fields, got %v", keys)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic on use.
	logger.Info("noop")
}

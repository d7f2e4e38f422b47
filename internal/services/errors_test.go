package services_test

import (
	"errors"
	"net/http"
	"testing"

	"clipper/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrTransient, "downloading", "fetch source", "GET failed", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected error to match ErrTransient, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to retain cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "uploading", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", services.Wrap(services.ErrValidation, "", "submit", "video_url is required", nil), http.StatusBadRequest},
		{"not found", services.Wrap(services.ErrNotFound, "", "status", "unknown job", nil), http.StatusNotFound},
		{"configuration", services.Wrap(services.ErrConfiguration, "", "", "missing credentials", nil), http.StatusServiceUnavailable},
		{"external tool", services.Wrap(services.ErrExternalTool, "removing_silence", "ffmpeg", "exit 1", nil), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestMessageStripsSentinelPrefix(t *testing.T) {
	err := services.Wrap(services.ErrExternalTool, "removing_silence", "ffmpeg concat", "exit status 1", nil)
	got := services.Message(err)
	want := "removing_silence: ffmpeg concat: exit status 1"
	if got != want {
		t.Fatalf("Message = %q, want %q", got, want)
	}
}

func TestMessageNilError(t *testing.T) {
	if got := services.Message(nil); got != "" {
		t.Fatalf("Message(nil) = %q, want empty", got)
	}
}

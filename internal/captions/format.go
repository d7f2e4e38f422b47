package captions

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"clipper/internal/services/whisper"
)

// FormatSRTTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// RenderSRT produces SRT subtitle content: numbered cues with
// comma-millisecond timestamps, each terminated by a blank line.
func RenderSRT(segments []whisper.Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatSRTTimestamp(segment.Start),
			FormatSRTTimestamp(segment.End),
			strings.TrimSpace(segment.Text),
		)
	}
	return b.String()
}

// RenderVTT produces WebVTT subtitle content: the WEBVTT header followed by
// the same cue structure as SRT with period-millisecond timestamps.
func RenderVTT(segments []whisper.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			strings.ReplaceAll(FormatSRTTimestamp(segment.Start), ",", "."),
			strings.ReplaceAll(FormatSRTTimestamp(segment.End), ",", "."),
			strings.TrimSpace(segment.Text),
		)
	}
	return b.String()
}

// WriteSRT writes segments to path in SRT form.
func WriteSRT(segments []whisper.Segment, path string) error {
	if err := os.WriteFile(path, []byte(RenderSRT(segments)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteVTT writes segments to path in WebVTT form.
func WriteVTT(segments []whisper.Segment, path string) error {
	if err := os.WriteFile(path, []byte(RenderVTT(segments)), 0o644); err != nil {
		return fmt.Errorf("write vtt: %w", err)
	}
	return nil
}

// WriteTranscript writes the full structured transcript to path as JSON.
func WriteTranscript(transcription whisper.Transcription, path string) error {
	payload, err := json.MarshalIndent(map[string]any{
		"language": transcription.Language,
		"text":     transcription.Text,
		"segments": transcription.Segments,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

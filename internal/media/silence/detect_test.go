package silence

import (
	"math"
	"testing"
)

const detectOutput = `[silencedetect @ 0x5555] silence_start: 3.5
[silencedetect @ 0x5555] silence_end: 5.2 | silence_duration: 1.7
frame= 1200 fps=240 q=-0.0 size=N/A time=00:00:48.00 bitrate=N/A
[silencedetect @ 0x5555] silence_start: 10
[silencedetect @ 0x5555] silence_end: 12.25 | silence_duration: 2.25
`

func TestParseDetectOutput(t *testing.T) {
	intervals := parseDetectOutput(detectOutput)
	want := []Interval{
		{Start: 3.5, End: 5.2},
		{Start: 10, End: 12.25},
	}
	if len(intervals) != len(want) {
		t.Fatalf("got %d intervals, want %d: %v", len(intervals), len(want), intervals)
	}
	for i := range want {
		if intervals[i] != want[i] {
			t.Fatalf("interval %d = %+v, want %+v", i, intervals[i], want[i])
		}
	}
}

func TestParseDetectOutputIgnoresUnpairedAndGarbage(t *testing.T) {
	output := `[silencedetect] silence_end: 4.0 | silence_duration: 4.0
[silencedetect] silence_start: not-a-number
random ffmpeg noise
[silencedetect] silence_start: 7.0
`
	if intervals := parseDetectOutput(output); len(intervals) != 0 {
		t.Fatalf("expected no intervals, got %v", intervals)
	}
}

func TestKeepIntervalsComplement(t *testing.T) {
	silences := []Interval{
		{Start: 3.5, End: 5.2},
		{Start: 10, End: 12.25},
	}
	kept := keepIntervals(silences, 20, 0.1)
	want := []Interval{
		{Start: 0, End: 3.4},
		{Start: 5.3, End: 9.9},
		{Start: 12.35, End: 20},
	}
	if len(kept) != len(want) {
		t.Fatalf("got %d kept intervals, want %d: %v", len(kept), len(want), kept)
	}
	for i := range want {
		if math.Abs(kept[i].Start-want[i].Start) > 1e-9 || math.Abs(kept[i].End-want[i].End) > 1e-9 {
			t.Fatalf("kept[%d] = %+v, want %+v", i, kept[i], want[i])
		}
	}
}

func TestKeepIntervalsNoSilenceKeepsWholeFile(t *testing.T) {
	kept := keepIntervals(nil, 42.5, 0.1)
	if len(kept) != 1 || kept[0] != (Interval{Start: 0, End: 42.5}) {
		t.Fatalf("kept = %v", kept)
	}
}

func TestKeepIntervalsSilenceCoversEverything(t *testing.T) {
	kept := keepIntervals([]Interval{{Start: 0, End: 10}}, 10, 0.5)
	if len(kept) != 0 {
		t.Fatalf("expected no kept intervals, got %v", kept)
	}
}

func TestKeepIntervalsClampsPaddingToBounds(t *testing.T) {
	kept := keepIntervals([]Interval{{Start: 0.05, End: 1}}, 5, 0.2)
	// Padding pushes the silence start below zero; the leading segment vanishes.
	if len(kept) != 1 {
		t.Fatalf("kept = %v", kept)
	}
	if math.Abs(kept[0].Start-1.2) > 1e-9 || kept[0].End != 5 {
		t.Fatalf("kept[0] = %+v", kept[0])
	}
}

func TestKeepIntervalsAreOrderedAndDisjoint(t *testing.T) {
	silences := []Interval{
		{Start: 1, End: 2},
		{Start: 2.1, End: 3},
		{Start: 8, End: 9.5},
	}
	kept := keepIntervals(silences, 12, 0.1)
	prevEnd := 0.0
	for _, iv := range kept {
		if iv.Start < prevEnd {
			t.Fatalf("intervals overlap or regress: %v", kept)
		}
		if iv.Duration() <= 0 {
			t.Fatalf("non-positive interval: %+v", iv)
		}
		prevEnd = iv.End
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.NoiseThreshold != "-30dB" {
		t.Fatalf("noise threshold default = %q", opts.NoiseThreshold)
	}
	if opts.MinSilenceDuration != 0.5 {
		t.Fatalf("min silence default = %v", opts.MinSilenceDuration)
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(0.5); got != "0.5" {
		t.Fatalf("formatSeconds(0.5) = %q", got)
	}
	if got := formatSeconds(10); got != "10" {
		t.Fatalf("formatSeconds(10) = %q", got)
	}
}

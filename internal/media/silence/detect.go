package silence

import (
	"bufio"
	"strconv"
	"strings"
)

// Interval is a half-open time range within the source media, in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// parseDetectOutput extracts silence intervals from ffmpeg silencedetect
// log output. The filter reports "silence_start: T" and "silence_end: T"
// pairs on stderr; unpaired or malformed entries are skipped.
func parseDetectOutput(output string) []Interval {
	var intervals []Interval
	start := -1.0

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := extractField(line, "silence_start:"); ok {
			start = value
			continue
		}
		if value, ok := extractField(line, "silence_end:"); ok && start >= 0 {
			if value > start {
				intervals = append(intervals, Interval{Start: start, End: value})
			}
			start = -1.0
		}
	}
	return intervals
}

func extractField(line, marker string) (float64, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// keepIntervals computes the complement of the silence intervals over
// [0, duration], widening each silent range by padding on both sides before
// cutting. Returned intervals are sorted, non-overlapping, and strictly
// positive in length.
func keepIntervals(silences []Interval, duration, padding float64) []Interval {
	var kept []Interval
	prevEnd := 0.0

	for _, sil := range silences {
		start := sil.Start - padding
		if start < 0 {
			start = 0
		}
		end := sil.End + padding
		if end > duration {
			end = duration
		}
		if start > prevEnd {
			kept = append(kept, Interval{Start: prevEnd, End: start})
		}
		if end > prevEnd {
			prevEnd = end
		}
	}
	if prevEnd < duration {
		kept = append(kept, Interval{Start: prevEnd, End: duration})
	}
	return kept
}

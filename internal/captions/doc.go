// Package captions turns whisper transcriptions into subtitle artifacts:
// SRT and WebVTT tracks plus a structured JSON transcript, with an optional
// English translation track for configured source languages.
package captions

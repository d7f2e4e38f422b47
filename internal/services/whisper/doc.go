// Package whisper wraps the whisper CLI for speech transcription and
// translation.
package whisper

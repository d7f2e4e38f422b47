// Package language normalizes language identifiers across the pipeline:
// whisper reports ISO 639-1 codes while callers may send full names.
package language

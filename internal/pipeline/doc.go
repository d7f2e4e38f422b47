// Package pipeline orchestrates the per-job processing flow from download
// through silence removal, captioning, and upload.
package pipeline

// Package jobs holds the job registry: the per-job state model with its stage
// progression and an in-memory SQLite-backed keyed store.
package jobs

// Package logging wires log/slog with the console and JSON handlers used across
// the daemon, plus attribute helpers and context-derived fields (job id, stage,
// correlation id).
package logging

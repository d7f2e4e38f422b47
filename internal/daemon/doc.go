// Package daemon hosts the long-running process: the HTTP API surface and
// the pipeline orchestrator behind it.
package daemon

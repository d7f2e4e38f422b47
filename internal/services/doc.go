// Package services holds cross-cutting service plumbing: the error taxonomy
// shared by pipeline stages and the API surface, and context annotations used
// for structured logging.
package services

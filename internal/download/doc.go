// Package download fetches source media over HTTP into the job work
// directory.
package download

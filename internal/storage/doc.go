// Package storage uploads processed media to remote object storage, with
// Supabase Storage and S3 backends.
package storage

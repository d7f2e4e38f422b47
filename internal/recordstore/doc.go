// Package recordstore pushes best-effort job status updates to the external
// video project record in Supabase.
package recordstore

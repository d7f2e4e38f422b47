package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipper/internal/config"
)

const userAgent = "Clipper/0.1.0"

// Record statuses pushed to the external project record.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Notifier pushes job status updates to the external record store, keyed by
// the caller's shape id. All calls are best-effort from the pipeline's point
// of view; the orchestrator logs failures and moves on.
type Notifier interface {
	NotifyProcessing(ctx context.Context, shapeID string) error
	NotifyCompleted(ctx context.Context, shapeID, outputURL string, metadata map[string]any) error
	NotifyFailed(ctx context.Context, shapeID, errorMessage string) error
}

// NewNotifier builds a Supabase-backed notifier when credentials are
// configured. Without credentials a noop implementation is returned so the
// pipeline runs standalone.
func NewNotifier(cfg *config.Config) Notifier {
	baseURL := strings.TrimSpace(cfg.Supabase.URL)
	key := strings.TrimSpace(cfg.Supabase.ServiceRoleKey)
	if baseURL == "" || key == "" {
		return noopNotifier{}
	}
	return &supabaseNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		table:   cfg.Supabase.Table,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type supabaseNotifier struct {
	baseURL string
	key     string
	table   string
	client  *http.Client
}

func (s *supabaseNotifier) NotifyProcessing(ctx context.Context, shapeID string) error {
	return s.patch(ctx, shapeID, map[string]any{"status": StatusProcessing})
}

func (s *supabaseNotifier) NotifyCompleted(ctx context.Context, shapeID, outputURL string, metadata map[string]any) error {
	update := map[string]any{"status": StatusCompleted}
	if outputURL != "" {
		update["output_url"] = outputURL
	}
	if len(metadata) > 0 {
		update["metadata"] = metadata
	}
	return s.patch(ctx, shapeID, update)
}

func (s *supabaseNotifier) NotifyFailed(ctx context.Context, shapeID, errorMessage string) error {
	return s.patch(ctx, shapeID, map[string]any{
		"status":   StatusFailed,
		"metadata": map[string]any{"error": errorMessage},
	})
}

// patch issues a PostgREST partial update filtered on the shape id column.
func (s *supabaseNotifier) patch(ctx context.Context, shapeID string, update map[string]any) error {
	shapeID = strings.TrimSpace(shapeID)
	if shapeID == "" {
		return fmt.Errorf("record update: shape id required")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("record update: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?shape_id=%s",
		s.baseURL, s.table, url.QueryEscape("eq."+shapeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("record update: build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("record update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("record update: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyProcessing(context.Context, string) error { return nil }
func (noopNotifier) NotifyCompleted(context.Context, string, string, map[string]any) error {
	return nil
}
func (noopNotifier) NotifyFailed(context.Context, string, string) error { return nil }

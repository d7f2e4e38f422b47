package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipper/internal/daemon"
)

// apiClient talks to a running clipper daemon over its HTTP API.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) Process(ctx context.Context, req daemon.ProcessRequest) (daemon.ProcessResponse, error) {
	var out daemon.ProcessResponse
	err := c.do(ctx, http.MethodPost, "/api/process", req, &out)
	return out, err
}

func (c *apiClient) Status(ctx context.Context, jobID string) (daemon.JobStatusResponse, error) {
	var out daemon.JobStatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status/"+jobID, nil, &out)
	return out, err
}

func (c *apiClient) Jobs(ctx context.Context, stages []string) (daemon.JobsListResponse, error) {
	path := "/api/jobs"
	if len(stages) > 0 {
		query := make([]string, 0, len(stages))
		for _, stage := range stages {
			query = append(query, "stage="+stage)
		}
		path += "?" + strings.Join(query, "&")
	}
	var out daemon.JobsListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *apiClient) Health(ctx context.Context) (daemon.HealthResponse, error) {
	var out daemon.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

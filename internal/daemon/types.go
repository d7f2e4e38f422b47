package daemon

import (
	"clipper/internal/jobs"
)

// ProcessRequest is the submission payload for POST /api/process.
type ProcessRequest struct {
	VideoURL string         `json:"video_url"`
	ShapeID  string         `json:"shape_id"`
	Options  map[string]any `json:"options"`
}

// ProcessResponse acknowledges a scheduled job.
type ProcessResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JobStatusResponse is the wire form of a job for status queries.
type JobStatusResponse struct {
	JobID    string         `json:"job_id"`
	Status   string         `json:"status"`
	Progress int            `json:"progress"`
	Message  string         `json:"message"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// HealthResponse reports daemon liveness and registry counts.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Jobs      jobs.HealthSummary `json:"jobs"`
}

// JobsListResponse wraps the job listing endpoint payload.
type JobsListResponse struct {
	Jobs []JobStatusResponse `json:"jobs"`
}

func jobStatusFromJob(job *jobs.Job) JobStatusResponse {
	resp := JobStatusResponse{
		JobID:    job.ID,
		Status:   string(job.Stage),
		Progress: job.Progress,
		Message:  job.Message,
		Error:    job.ErrorMessage,
	}
	if job.Stage == jobs.StageCompleted {
		if result, err := job.Result(); err == nil {
			resp.Result = result
		}
	}
	return resp
}

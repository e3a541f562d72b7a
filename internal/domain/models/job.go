package models

import "time"

// JobState is the lifecycle state of a queued insights run.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Job tracks an asynchronous insights run.
type Job struct {
	ID        string            `json:"job_id"`
	State     JobState          `json:"status"`
	Request   InsightsRequest   `json:"request"`
	Result    *InsightsResponse `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Source    string            `json:"source,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

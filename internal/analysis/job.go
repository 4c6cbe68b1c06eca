package analysis

import "time"

// State of the upload/analysis lifecycle for a single user.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Job is the handle of one submitted analysis job. A fresh handle is
// allocated per submission, so late results from an abandoned job can be
// told apart from the current one by comparing handle pointers.
type Job struct {
	ID        string
	Progress  int
	Message   string
	StartedAt time.Time
}

// JobView is the externally visible status of the current (or last) job.
type JobView struct {
	State    State  `json:"state"`
	JobID    string `json:"jobId,omitempty"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

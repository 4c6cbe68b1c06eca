package gymapi

import (
	"fmt"
	"time"
)

// SubmissionError means the analysis service rejected the job submission.
// The server-provided message is kept verbatim for the user.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("job submission rejected (status %d): %s", e.StatusCode, e.Message)
}

type submitJobResponse struct {
	JobID string `json:"jobId"`
	// older deployments of the analysis service return "_id" instead
	LegacyJobID string `json:"_id"`
	Message     string `json:"message"`
}

func (r submitJobResponse) jobID() string {
	if r.JobID != "" {
		return r.JobID
	}
	return r.LegacyJobID
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// workoutResponse is the wire shape of a workout record. The identity field
// comes either as "id" or as "_id" depending on the server version, so both
// are decoded here and normalized before anything else sees the record.
type workoutResponse struct {
	ID          string     `json:"id"`
	LegacyID    string     `json:"_id"`
	CreatedAt   time.Time  `json:"createdAt"`
	DurationSec float64    `json:"durationSec"`
	FormScore   *float64   `json:"formScore"`
	Exercises   []Exercise `json:"exercises"`
}

func (r workoutResponse) normalize() Workout {
	id := r.ID
	if id == "" {
		id = r.LegacyID
	}
	return Workout{
		ID:          id,
		CreatedAt:   r.CreatedAt,
		DurationSec: r.DurationSec,
		FormScore:   r.FormScore,
		Exercises:   r.Exercises,
	}
}

type workoutHistoryResponse struct {
	Workouts []workoutResponse `json:"workouts"`
	Count    int               `json:"count"`
}

package gymapi

import "time"

// Session carries the identity of the user on whose behalf a request is
// made. It is passed explicitly to every operation that needs it, there is
// no ambient "current user" state.
type Session struct {
	UserID string
}

func (s Session) Valid() bool {
	return s.UserID != ""
}

type JobState string

const (
	JobStateProcessing JobState = "processing"
	JobStateComplete   JobState = "complete"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether no further state transitions follow.
func (s JobState) Terminal() bool {
	return s == JobStateComplete || s == JobStateFailed
}

// JobStatus is one progress reading of a server-side analysis job.
type JobStatus struct {
	Progress int      `json:"progress"`
	Message  string   `json:"message"`
	State    JobState `json:"state"`
}

// UploadedVideo is a workout video as received from the user, before any
// contact with the analysis service.
type UploadedVideo struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Exercise struct {
	Name string `json:"name"`
	// muscle name -> activation fraction, values in [0,1]; absent muscles are 0
	MuscleActivation map[string]float64 `json:"muscleActivation"`
}

// Workout is a single completed workout session, owned by the remote store.
// Read-only input to the dashboard aggregation.
type Workout struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	DurationSec float64    `json:"durationSec"`
	FormScore   *float64   `json:"formScore"`
	Exercises   []Exercise `json:"exercises"`
}

// RefPoint is a single point of a population reference distribution:
// Value is ranked at the given Percentile among the population.
type RefPoint struct {
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
}

// Distribution holds the reference points for one metric, ordered by
// ascending value. Two points (min at 0, max at 100) is the minimal form.
type Distribution struct {
	Points []RefPoint `json:"points"`
}

// PopulationStats is the reference distribution table, keyed by metric name.
type PopulationStats map[string]Distribution

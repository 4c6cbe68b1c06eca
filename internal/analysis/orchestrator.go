package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=orchestrator_mocks_test.go -package=analysis_test

type analysisAPI interface {
	SubmitJob(ctx context.Context, session gymapi.Session, video gymapi.UploadedVideo) (string, error)
	GetJobStatus(ctx context.Context, jobID string) (gymapi.JobStatus, error)
}

// Orchestrator drives the upload lifecycle for one user:
// idle -> uploading -> processing -> complete / error, with cancel
// allowed from the two in-flight states. Events are serialized through
// a mutex; network calls run outside of it, and every async result is
// checked against the job handle it belongs to before being applied,
// so results of an abandoned job never leak into the next one.
type Orchestrator struct {
	api          analysisAPI
	metrics      *metrics.Manager
	pollInterval time.Duration
	maxPollTime  time.Duration

	mu         sync.Mutex
	state      State
	job        *Job
	poller     *Poller
	lastError  string
	onComplete func(jobID string)
}

type OrchestratorParams struct {
	API          analysisAPI
	Metrics      *metrics.Manager
	PollInterval time.Duration
	MaxPollTime  time.Duration // 0 means poll forever
}

func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	return &Orchestrator{
		api:          params.API,
		metrics:      params.Metrics,
		pollInterval: params.PollInterval,
		maxPollTime:  params.MaxPollTime,
		state:        StateIdle,
	}
}

// OnComplete registers a callback fired once per successfully finished
// job. Must be set before the first Submit.
func (o *Orchestrator) OnComplete(fn func(jobID string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onComplete = fn
}

// Submit uploads a video and, once the server acknowledges it, starts
// polling the new job. Returns ErrConcurrentJob when a job is already
// in flight; a previous terminal state (complete or error) is reset.
func (o *Orchestrator) Submit(ctx context.Context, session gymapi.Session, video gymapi.UploadedVideo) error {
	if !session.Valid() {
		return ErrNoSession
	}
	if !strings.HasPrefix(video.ContentType, "video/") {
		return ErrUnsupportedInput
	}

	o.mu.Lock()
	if o.state == StateUploading || o.state == StateProcessing {
		o.mu.Unlock()
		return ErrConcurrentJob
	}
	job := &Job{StartedAt: time.Now()}
	o.job = job
	o.state = StateUploading
	o.lastError = ""
	o.mu.Unlock()

	o.metrics.CounterUploadsStarted.Inc()
	log.Debugf("user %s: uploading %s [%s, %d bytes]", session.UserID, video.Filename, video.ContentType, len(video.Data))

	jobID, err := o.api.SubmitJob(ctx, session, video)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.job != job {
		// canceled mid-upload, result is nobody's business anymore
		log.Debugf("user %s: submission finished after cancel, dropping job [%s]", session.UserID, jobID)
		return nil
	}

	if err != nil {
		o.state = StateError
		o.job = nil
		o.lastError = submissionMessage(err)
		o.metrics.CounterUploadsFailed.Inc()
		return err
	}

	job.ID = jobID
	o.state = StateProcessing
	o.poller = NewPoller(PollerParams{
		API:         o.api,
		JobID:       jobID,
		Interval:    o.pollInterval,
		MaxPollTime: o.maxPollTime,
		Metrics:     o.metrics,
		OnUpdate: func(status gymapi.JobStatus) {
			o.applyUpdate(job, status)
		},
		OnTerminal: func(status TerminalStatus) {
			o.applyTerminal(job, status)
		},
	})
	// the poller has to outlive the request that started the upload
	o.poller.Start(context.Background())
	o.metrics.GaugeActiveJobs.Inc()

	log.Debugf("user %s: job [%s] accepted, polling started", session.UserID, jobID)
	return nil
}

// Cancel abandons the in-flight upload or job and returns to idle.
// A no-op in any other state.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	if o.state != StateUploading && o.state != StateProcessing {
		o.mu.Unlock()
		return
	}
	wasProcessing := o.state == StateProcessing
	poller := o.poller
	o.poller = nil
	o.job = nil
	o.state = StateIdle
	o.lastError = ""
	o.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	if wasProcessing {
		o.metrics.GaugeActiveJobs.Dec()
	}
	o.metrics.CounterUploadsCanceled.Inc()
}

// Status returns a consistent snapshot of the lifecycle.
func (o *Orchestrator) Status() JobView {
	o.mu.Lock()
	defer o.mu.Unlock()
	view := JobView{State: o.state, Error: o.lastError}
	if o.job != nil {
		view.JobID = o.job.ID
		view.Progress = o.job.Progress
		view.Message = o.job.Message
	}
	if o.state == StateComplete {
		view.Progress = 100
	}
	return view
}

func (o *Orchestrator) applyUpdate(job *Job, status gymapi.JobStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job != job || o.state != StateProcessing {
		return
	}
	// displayed progress never goes backwards
	if status.Progress > job.Progress {
		job.Progress = status.Progress
	}
	job.Message = status.Message
}

func (o *Orchestrator) applyTerminal(job *Job, status TerminalStatus) {
	o.mu.Lock()
	if o.job != job {
		o.mu.Unlock()
		return
	}
	poller := o.poller
	o.poller = nil

	var completed func(jobID string)
	if status.State == gymapi.JobStateComplete {
		o.state = StateComplete
		job.Progress = 100
		job.Message = status.Message
		o.metrics.CounterUploadsCompleted.Inc()
		o.metrics.HistJobProcessingDuration.Observe(time.Since(job.StartedAt).Seconds())
		completed = o.onComplete
	} else {
		o.state = StateError
		o.lastError = status.Message
		o.metrics.CounterUploadsFailed.Inc()
	}
	jobID := job.ID
	o.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	o.metrics.GaugeActiveJobs.Dec()
	if completed != nil {
		completed(jobID)
	}
}

func submissionMessage(err error) string {
	var subErr *gymapi.SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Message
	}
	return err.Error()
}

package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=poller_mocks_test.go -package=analysis_test

type jobStatusAPI interface {
	GetJobStatus(ctx context.Context, jobID string) (gymapi.JobStatus, error)
}

// TerminalStatus is the final outcome reported by a Poller, exactly once.
type TerminalStatus struct {
	State    gymapi.JobState
	Message  string
	TimedOut bool
}

type PollerParams struct {
	API         jobStatusAPI
	JobID       string
	Interval    time.Duration
	MaxPollTime time.Duration // 0 disables the deadline
	Metrics     *metrics.Manager
	OnUpdate    func(status gymapi.JobStatus)
	OnTerminal  func(status TerminalStatus)
}

// Poller watches a single analysis job at a fixed interval until the job
// reaches a terminal state, the deadline passes, or Stop is called.
// Transient query errors are logged and counted, never surfaced.
type Poller struct {
	api         jobStatusAPI
	jobID       string
	interval    time.Duration
	maxPollTime time.Duration
	metrics     *metrics.Manager
	onUpdate    func(status gymapi.JobStatus)
	onTerminal  func(status TerminalStatus)

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(params PollerParams) *Poller {
	interval := params.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		api:         params.API,
		jobID:       params.JobID,
		interval:    interval,
		maxPollTime: params.MaxPollTime,
		metrics:     params.Metrics,
		onUpdate:    params.OnUpdate,
		onTerminal:  params.OnTerminal,
		done:        make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	go p.run(ctx)
}

// Stop halts the poll loop. Safe to call more than once; results arriving
// after Stop are dropped.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

// Done is closed when the poll loop goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var deadlineCh <-chan time.Time
	if p.maxPollTime > 0 {
		deadline := time.NewTimer(p.maxPollTime)
		defer deadline.Stop()
		deadlineCh = deadline.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadlineCh:
			log.Warnf("job %s: still not done after %s, giving up", p.jobID, p.maxPollTime)
			p.reportTerminal(TerminalStatus{
				State:    gymapi.JobStateFailed,
				Message:  "analysis timed out",
				TimedOut: true,
			})
			return
		case <-ticker.C:
			p.metrics.CounterPollTicks.Inc()
			status, err := p.api.GetJobStatus(ctx, p.jobID)
			// at most one query ever runs: this loop is the only caller,
			// and a tick that fired while the query was outstanding is
			// discarded here instead of queueing a second query
			select {
			case <-ticker.C:
			default:
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.metrics.CounterPollErrors.Inc()
				log.Errorf("poll job %s status: %s", p.jobID, err)
				continue
			}
			if !p.applyUpdate(status) {
				return
			}
			if status.State.Terminal() {
				p.reportTerminal(TerminalStatus{
					State:   status.State,
					Message: status.Message,
				})
				return
			}
		}
	}
}

func (p *Poller) applyUpdate(status gymapi.JobStatus) bool {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()
	if p.onUpdate != nil {
		p.onUpdate(status)
	}
	return true
}

func (p *Poller) reportTerminal(status TerminalStatus) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	if p.onTerminal != nil {
		p.onTerminal(status)
	}
}

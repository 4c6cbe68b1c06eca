package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterUploadsStarted     prometheus.Counter
	CounterUploadsCompleted   prometheus.Counter
	CounterUploadsFailed      prometheus.Counter
	CounterUploadsCanceled    prometheus.Counter
	CounterPollTicks          prometheus.Counter
	CounterPollErrors         prometheus.Counter
	CounterDashboardRefreshes prometheus.Counter
	CounterHandleRequestPanic prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge
	GaugeActiveJobs prometheus.Gauge

	// histograms
	HistJobProcessingDuration prometheus.Histogram
	HistogramRequestDuration  *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("backend", "test_server", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterUploadsStarted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "uploads_started",
		Help:      "The total number of workout video uploads started",
	})
	counterUploadsCompleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "uploads_completed",
		Help:      "The total number of analysis jobs that reached the complete state",
	})
	counterUploadsFailed := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "uploads_failed",
		Help:      "The total number of analysis jobs that ended in error",
	})
	counterUploadsCanceled := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "uploads_canceled",
		Help:      "The total number of uploads canceled by the user",
	})
	counterPollTicks := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "poll_ticks",
		Help:      "The total number of job status poll queries sent",
	})
	counterPollErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "poll_errors",
		Help:      "The total number of transient job status poll failures",
	})
	counterDashboardRefreshes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dashboard_refreshes",
		Help:      "The total number of dashboard aggregations computed from scratch",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "current_requests",
		Help:        "Current number of requests served",
		ConstLabels: nil,
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "life_signal",
		Help:        "Shows whether the service is alive",
		ConstLabels: nil,
	})
	gaugeActiveJobs := factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "active_jobs",
		Help:        "Current number of analysis jobs being polled",
		ConstLabels: nil,
	})

	histJobProcessingDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				1, 5, 10, 30, 60, 120,
				240, 480, 1000, 2000,
			},
			Name: "job_processing_duration_seconds",
			Help: "Total duration of a single analysis job from submit to terminal state",
		},
	)

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterUploadsStarted:     counterUploadsStarted,
		CounterUploadsCompleted:   counterUploadsCompleted,
		CounterUploadsFailed:      counterUploadsFailed,
		CounterUploadsCanceled:    counterUploadsCanceled,
		CounterPollTicks:          counterPollTicks,
		CounterPollErrors:         counterPollErrors,
		CounterDashboardRefreshes: counterDashboardRefreshes,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		GaugeRequests:             gaugeRequests,
		GaugeLifeSignal:           gaugeLifeSignal,
		GaugeActiveJobs:           gaugeActiveJobs,
		HistJobProcessingDuration: histJobProcessingDuration,
		HistogramRequestDuration:  histogramRequestDuration,
	}
}

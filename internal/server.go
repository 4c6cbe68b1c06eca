package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymintel/internal/analysis"
	"github.com/2beens/gymintel/internal/config"
	"github.com/2beens/gymintel/internal/dashboard"
	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/middleware"
	"github.com/2beens/gymintel/internal/telemetry/metrics"
	"github.com/2beens/gymintel/internal/telemetry/tracing"
	"github.com/2beens/gymintel/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config           *config.Config
	gymApiClient     *gymapi.Client
	analysisHandler  *analysis.Handler
	dashboardHandler *dashboard.Handler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AnalysisAPIKey          string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(params NewServerParams) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymintel", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymintel-backend")
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(params.Config.AnalysisAPITimeoutSeconds) * time.Second,
	}

	gymApiClient := gymapi.NewClient(
		params.Config.AnalysisAPIURL,
		params.AnalysisAPIKey,
		tracedHttpClient,
	)

	analysisHandler := analysis.NewHandler(
		gymApiClient,
		metricsManager,
		time.Duration(params.Config.PollIntervalSeconds)*time.Second,
		time.Duration(params.Config.MaxPollSeconds)*time.Second,
	)
	dashboardHandler := dashboard.NewHandler(
		gymApiClient,
		metricsManager,
		params.Config.HistoryWindowDays,
	)

	// a finished analysis means new workout data, stale dashboards go away
	analysisHandler.OnComplete(func(userID, jobID string) {
		log.Debugf("analysis job [%s] done for user %s", jobID, userID)
		dashboardHandler.InvalidateUser(userID)
	})

	return &Server{
		config:           params.Config,
		versionInfo:      params.VersionInfo,
		gymApiClient:     gymApiClient,
		analysisHandler:  analysisHandler,
		dashboardHandler: dashboardHandler,
		metricsManager:   metricsManager,
		promRegistry:     promRegistry,
		otelShutdown:     otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/analysis/upload", s.analysisHandler.HandleUpload).Methods("POST", "OPTIONS").Name("upload-video")
	r.HandleFunc("/analysis/status", s.analysisHandler.HandleStatus).Methods("GET", "OPTIONS").Name("job-status")
	r.HandleFunc("/analysis/cancel", s.analysisHandler.HandleCancel).Methods("POST", "OPTIONS").Name("cancel-job")

	r.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/dashboard/compare", s.dashboardHandler.HandleCompare).Methods("GET", "OPTIONS").Name("dashboard-compare")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "ok: "+s.versionInfo)
	}).Methods("GET").Name("health")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

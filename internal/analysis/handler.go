package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/telemetry/metrics"
	"github.com/2beens/gymintel/internal/telemetry/tracing"
	"github.com/2beens/gymintel/pkg"

	log "github.com/sirupsen/logrus"
)

const maxUploadBytes = 200 << 20 // videos, so generous

type Handler struct {
	api          analysisAPI
	metrics      *metrics.Manager
	pollInterval time.Duration
	maxPollTime  time.Duration
	onComplete   func(userID, jobID string)

	mu            sync.Mutex
	orchestrators map[string]*Orchestrator
}

func NewHandler(
	api analysisAPI,
	metricsManager *metrics.Manager,
	pollInterval time.Duration,
	maxPollTime time.Duration,
) *Handler {
	return &Handler{
		api:           api,
		metrics:       metricsManager,
		pollInterval:  pollInterval,
		maxPollTime:   maxPollTime,
		orchestrators: make(map[string]*Orchestrator),
	}
}

// OnComplete registers a callback fired after any user's job finishes
// successfully. Must be set before the server starts taking requests.
func (handler *Handler) OnComplete(fn func(userID, jobID string)) {
	handler.onComplete = fn
}

func (handler *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.upload")
	defer span.End()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Errorf("upload: parse multipart form: %s", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	userID := r.FormValue("userId")
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "error, video file missing", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("upload: read video file: %s", err)
		http.Error(w, "failed to read video file", http.StatusBadRequest)
		return
	}

	video := gymapi.UploadedVideo{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	orchestrator := handler.orchestratorFor(userID)
	if err := orchestrator.Submit(ctx, gymapi.Session{UserID: userID}, video); err != nil {
		handler.writeSubmitError(w, userID, err)
		return
	}

	viewJson, err := json.Marshal(orchestrator.Status())
	if err != nil {
		log.Errorf("upload: marshal job view: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJson, http.StatusAccepted)
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.status")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	view := JobView{State: StateIdle}
	if orchestrator := handler.lookup(userID); orchestrator != nil {
		view = orchestrator.Status()
	}

	viewJson, err := json.Marshal(view)
	if err != nil {
		log.Errorf("status: marshal job view: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJson, http.StatusOK)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.cancel")
	defer span.End()

	userID := r.FormValue("userId")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	if orchestrator := handler.lookup(userID); orchestrator != nil {
		orchestrator.Cancel()
	}
	pkg.WriteTextResponseOK(w, "canceled")
}

func (handler *Handler) writeSubmitError(w http.ResponseWriter, userID string, err error) {
	var subErr *gymapi.SubmissionError
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrUnsupportedInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrConcurrentJob):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &subErr):
		log.Errorf("upload: user %s: submission rejected: %s", userID, subErr)
		http.Error(w, subErr.Message, http.StatusBadGateway)
	default:
		log.Errorf("upload: user %s: %s", userID, err)
		http.Error(w, "upload failed", http.StatusBadGateway)
	}
}

func (handler *Handler) lookup(userID string) *Orchestrator {
	handler.mu.Lock()
	defer handler.mu.Unlock()
	return handler.orchestrators[userID]
}

func (handler *Handler) orchestratorFor(userID string) *Orchestrator {
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if orchestrator, ok := handler.orchestrators[userID]; ok {
		return orchestrator
	}
	orchestrator := NewOrchestrator(OrchestratorParams{
		API:          handler.api,
		Metrics:      handler.metrics,
		PollInterval: handler.pollInterval,
		MaxPollTime:  handler.maxPollTime,
	})
	if handler.onComplete != nil {
		onComplete := handler.onComplete
		orchestrator.OnComplete(func(jobID string) {
			onComplete(userID, jobID)
		})
	}
	handler.orchestrators[userID] = orchestrator
	return orchestrator
}

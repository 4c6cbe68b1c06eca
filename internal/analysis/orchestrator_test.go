package analysis_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2beens/gymintel/internal/analysis"
	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/telemetry/metrics"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSession = gymapi.Session{UserID: "user-1"}
	testVideo   = gymapi.UploadedVideo{
		Filename:    "squat.mp4",
		ContentType: "video/mp4",
		Data:        []byte("not really a video"),
	}
)

func newTestOrchestrator(api *MockanalysisAPI, metricsManager *metrics.Manager) *analysis.Orchestrator {
	return analysis.NewOrchestrator(analysis.OrchestratorParams{
		API:          api,
		Metrics:      metricsManager,
		PollInterval: 10 * time.Millisecond,
	})
}

func TestOrchestrator_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		Return("job-1", nil)
	gomock.InOrder(
		api.EXPECT().
			GetJobStatus(gomock.Any(), "job-1").
			Return(gymapi.JobStatus{State: gymapi.JobStateProcessing, Progress: 30, Message: "detecting exercises"}, nil),
		api.EXPECT().
			GetJobStatus(gomock.Any(), "job-1").
			Return(gymapi.JobStatus{State: gymapi.JobStateProcessing, Progress: 70, Message: "scoring form"}, nil),
		api.EXPECT().
			GetJobStatus(gomock.Any(), "job-1").
			Return(gymapi.JobStatus{State: gymapi.JobStateComplete, Progress: 100, Message: "done"}, nil),
	)

	metricsManager := metrics.NewTestManager()
	orchestrator := newTestOrchestrator(api, metricsManager)

	completedCh := make(chan string, 1)
	orchestrator.OnComplete(func(jobID string) {
		completedCh <- jobID
	})

	require.NoError(t, orchestrator.Submit(context.Background(), testSession, testVideo))

	select {
	case jobID := <-completedCh:
		assert.Equal(t, "job-1", jobID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}

	view := orchestrator.Status()
	assert.Equal(t, analysis.StateComplete, view.State)
	assert.Equal(t, "job-1", view.JobID)
	assert.Equal(t, 100, view.Progress)
	assert.Empty(t, view.Error)

	assert.InDelta(t, 1, testutil.ToFloat64(metricsManager.CounterUploadsStarted), 0.01)
	assert.InDelta(t, 1, testutil.ToFloat64(metricsManager.CounterUploadsCompleted), 0.01)
	assert.InDelta(t, 0, testutil.ToFloat64(metricsManager.GaugeActiveJobs), 0.01)
}

func TestOrchestrator_SubmissionRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		Return("", &gymapi.SubmissionError{StatusCode: 422, Message: "video too long"})

	metricsManager := metrics.NewTestManager()
	orchestrator := newTestOrchestrator(api, metricsManager)

	err := orchestrator.Submit(context.Background(), testSession, testVideo)
	require.Error(t, err)

	var subErr *gymapi.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 422, subErr.StatusCode)

	view := orchestrator.Status()
	assert.Equal(t, analysis.StateError, view.State)
	assert.Equal(t, "video too long", view.Error)
	assert.Empty(t, view.JobID)

	assert.InDelta(t, 1, testutil.ToFloat64(metricsManager.CounterUploadsFailed), 0.01)
}

func TestOrchestrator_ResubmitAfterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := NewMockanalysisAPI(ctrl)
	gomock.InOrder(
		api.EXPECT().
			SubmitJob(gomock.Any(), testSession, testVideo).
			Return("", errors.New("analysis service unavailable")),
		api.EXPECT().
			SubmitJob(gomock.Any(), testSession, testVideo).
			Return("job-2", nil),
	)
	api.EXPECT().
		GetJobStatus(gomock.Any(), "job-2").
		Return(gymapi.JobStatus{State: gymapi.JobStateComplete, Progress: 100}, nil)

	orchestrator := newTestOrchestrator(api, metrics.NewTestManager())

	completedCh := make(chan string, 1)
	orchestrator.OnComplete(func(jobID string) {
		completedCh <- jobID
	})

	require.Error(t, orchestrator.Submit(context.Background(), testSession, testVideo))
	assert.Equal(t, analysis.StateError, orchestrator.Status().State)

	require.NoError(t, orchestrator.Submit(context.Background(), testSession, testVideo))

	select {
	case jobID := <-completedCh:
		assert.Equal(t, "job-2", jobID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestOrchestrator_RejectsConcurrentSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		Return("job-1", nil)
	api.EXPECT().
		GetJobStatus(gomock.Any(), "job-1").
		Return(gymapi.JobStatus{State: gymapi.JobStateProcessing, Progress: 10}, nil).
		AnyTimes()

	orchestrator := newTestOrchestrator(api, metrics.NewTestManager())

	require.NoError(t, orchestrator.Submit(context.Background(), testSession, testVideo))
	assert.ErrorIs(t,
		orchestrator.Submit(context.Background(), testSession, testVideo),
		analysis.ErrConcurrentJob,
	)

	orchestrator.Cancel()
	assert.Equal(t, analysis.StateIdle, orchestrator.Status().State)

	// let the poll loop observe the cancellation
	time.Sleep(30 * time.Millisecond)
}

func TestOrchestrator_InputValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := newTestOrchestrator(NewMockanalysisAPI(ctrl), metrics.NewTestManager())

	assert.ErrorIs(t,
		orchestrator.Submit(context.Background(), gymapi.Session{}, testVideo),
		analysis.ErrNoSession,
	)

	pdf := gymapi.UploadedVideo{Filename: "plan.pdf", ContentType: "application/pdf"}
	assert.ErrorIs(t,
		orchestrator.Submit(context.Background(), testSession, pdf),
		analysis.ErrUnsupportedInput,
	)

	assert.Equal(t, analysis.StateIdle, orchestrator.Status().State)
}

func TestOrchestrator_ProgressNeverGoesBackwards(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var orchestrator *analysis.Orchestrator
	var calls atomic.Int32

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		Return("job-1", nil)
	api.EXPECT().
		GetJobStatus(gomock.Any(), "job-1").
		DoAndReturn(func(_ context.Context, _ string) (gymapi.JobStatus, error) {
			// previous tick's result is fully applied before the next query
			switch calls.Add(1) {
			case 1:
				return gymapi.JobStatus{State: gymapi.JobStateProcessing, Progress: 50}, nil
			case 2:
				assert.Equal(t, 50, orchestrator.Status().Progress)
				return gymapi.JobStatus{State: gymapi.JobStateProcessing, Progress: 20}, nil
			case 3:
				assert.Equal(t, 50, orchestrator.Status().Progress)
				return gymapi.JobStatus{State: gymapi.JobStateComplete, Progress: 100}, nil
			default:
				return gymapi.JobStatus{State: gymapi.JobStateComplete, Progress: 100}, nil
			}
		}).
		Times(3)

	orchestrator = newTestOrchestrator(api, metrics.NewTestManager())

	completedCh := make(chan string, 1)
	orchestrator.OnComplete(func(jobID string) {
		completedCh <- jobID
	})

	require.NoError(t, orchestrator.Submit(context.Background(), testSession, testVideo))

	select {
	case <-completedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}

	assert.Equal(t, 100, orchestrator.Status().Progress)
}

func TestOrchestrator_CancelDuringUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uploadStarted := make(chan struct{})
	releaseUpload := make(chan struct{})

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		DoAndReturn(func(_ context.Context, _ gymapi.Session, _ gymapi.UploadedVideo) (string, error) {
			close(uploadStarted)
			<-releaseUpload
			return "job-1", nil
		})

	metricsManager := metrics.NewTestManager()
	orchestrator := newTestOrchestrator(api, metricsManager)

	submitDone := make(chan error, 1)
	go func() {
		submitDone <- orchestrator.Submit(context.Background(), testSession, testVideo)
	}()

	<-uploadStarted
	assert.Equal(t, analysis.StateUploading, orchestrator.Status().State)

	orchestrator.Cancel()
	close(releaseUpload)

	require.NoError(t, <-submitDone)

	// the acknowledged job is abandoned, no polling ever starts
	view := orchestrator.Status()
	assert.Equal(t, analysis.StateIdle, view.State)
	assert.Empty(t, view.JobID)
	assert.InDelta(t, 1, testutil.ToFloat64(metricsManager.CounterUploadsCanceled), 0.01)
}

func TestOrchestrator_LateResultAfterCancelIsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	statusQueried := make(chan struct{})
	releaseStatus := make(chan struct{})
	var once atomic.Bool

	api := NewMockanalysisAPI(ctrl)
	api.EXPECT().
		SubmitJob(gomock.Any(), testSession, testVideo).
		Return("job-1", nil)
	api.EXPECT().
		GetJobStatus(gomock.Any(), "job-1").
		DoAndReturn(func(_ context.Context, _ string) (gymapi.JobStatus, error) {
			if once.CompareAndSwap(false, true) {
				close(statusQueried)
			}
			<-releaseStatus
			return gymapi.JobStatus{State: gymapi.JobStateComplete, Progress: 100}, nil
		}).
		AnyTimes()

	metricsManager := metrics.NewTestManager()
	orchestrator := newTestOrchestrator(api, metricsManager)
	orchestrator.OnComplete(func(jobID string) {
		t.Errorf("completion fired for canceled job %s", jobID)
	})

	require.NoError(t, orchestrator.Submit(context.Background(), testSession, testVideo))

	<-statusQueried
	orchestrator.Cancel()
	close(releaseStatus)

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, analysis.StateIdle, orchestrator.Status().State)
	assert.InDelta(t, 0, testutil.ToFloat64(metricsManager.CounterUploadsCompleted), 0.01)
}

func TestOrchestrator_CancelInIdleIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metricsManager := metrics.NewTestManager()
	orchestrator := newTestOrchestrator(NewMockanalysisAPI(ctrl), metricsManager)

	orchestrator.Cancel()
	orchestrator.Cancel()

	assert.Equal(t, analysis.StateIdle, orchestrator.Status().State)
	assert.InDelta(t, 0, testutil.ToFloat64(metricsManager.CounterUploadsCanceled), 0.01)
}

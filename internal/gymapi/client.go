package gymapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/2beens/gymintel/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	oneHour                    = 60 * 60
	populationStatsCacheExpire = oneHour * 12 // population stats move slowly

	populationStatsCacheKey = "population-stats"
)

// Client talks to the remote analysis / data service. The four operations
// here are the only channel between this backend and the outside world.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *freecache.Cache
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      freecache.NewCache(cacheSize),
	}
}

// SubmitJob uploads a workout video for analysis and returns the id of the
// created job. Any non-success response becomes a SubmissionError carrying
// the server message verbatim.
func (c *Client) SubmitJob(ctx context.Context, session Session, video UploadedVideo) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gymapi.submitJob")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	body := &bytes.Buffer{}
	mpWriter := multipart.NewWriter(body)
	if err := mpWriter.WriteField("userId", session.UserID); err != nil {
		return "", fmt.Errorf("write user id field: %w", err)
	}
	filePart, err := mpWriter.CreateFormFile("file", video.Filename)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := filePart.Write(video.Data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mpWriter.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	submitURL := fmt.Sprintf("%s/api/workouts/upload", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mpWriter.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read submit job response bytes: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SubmissionError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(respBytes),
		}
	}

	var submitResp submitJobResponse
	if err := json.Unmarshal(respBytes, &submitResp); err != nil {
		return "", fmt.Errorf("unmarshal submit job response: %w", err)
	}

	jobID := submitResp.jobID()
	if jobID == "" {
		return "", &SubmissionError{
			StatusCode: resp.StatusCode,
			Message:    "service acknowledged the upload but returned no job id",
		}
	}

	log.Debugf("job submitted for user [%s]: %s", session.UserID, jobID)

	return jobID, nil
}

// GetJobStatus returns the current progress reading of the given job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (_ JobStatus, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gymapi.getJobStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	statusURL := fmt.Sprintf("%s/api/workouts/%s/status", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return JobStatus{}, err
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return JobStatus{}, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return JobStatus{}, fmt.Errorf("read job status response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return JobStatus{}, fmt.Errorf(
			"get job status for %s: status %d: %s",
			jobID, resp.StatusCode, serverMessage(respBytes),
		)
	}

	var status JobStatus
	if err := json.Unmarshal(respBytes, &status); err != nil {
		return JobStatus{}, fmt.Errorf("unmarshal job status response: %w", err)
	}

	return status, nil
}

// FetchWorkoutHistory returns the completed workouts of the given user for
// the last windowDays days, most recent first.
func (c *Client) FetchWorkoutHistory(ctx context.Context, session Session, windowDays int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gymapi.fetchWorkoutHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	historyURL := fmt.Sprintf(
		"%s/api/users/%s/workouts?days=%s",
		c.baseURL, session.UserID, strconv.Itoa(windowDays),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, historyURL, nil)
	if err != nil {
		return nil, err
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read workout history response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch workout history for %s: status %d: %s",
			session.UserID, resp.StatusCode, serverMessage(respBytes),
		)
	}

	var historyResp workoutHistoryResponse
	if err := json.Unmarshal(respBytes, &historyResp); err != nil {
		return nil, fmt.Errorf("unmarshal workout history response: %w", err)
	}

	workouts := make([]Workout, 0, len(historyResp.Workouts))
	for _, wr := range historyResp.Workouts {
		workouts = append(workouts, wr.normalize())
	}

	return workouts, nil
}

// FetchPopulationStats returns the population reference distribution table,
// cached in-process since it changes rarely.
func (c *Client) FetchPopulationStats(ctx context.Context) (_ PopulationStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gymapi.fetchPopulationStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if statsBytes, err := c.cache.Get([]byte(populationStatsCacheKey)); err == nil {
		var stats PopulationStats
		if err = json.Unmarshal(statsBytes, &stats); err == nil {
			log.Tracef("found population stats in cache")
			return stats, nil
		}
		log.Errorf("failed to unmarshal population stats from cache: %s", err)
	}

	statsURL := fmt.Sprintf("%s/api/population/stats", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
	if err != nil {
		return nil, err
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read population stats response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch population stats: status %d: %s",
			resp.StatusCode, serverMessage(respBytes),
		)
	}

	var stats PopulationStats
	if err := json.Unmarshal(respBytes, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal population stats response: %w", err)
	}

	if err := c.cache.Set([]byte(populationStatsCacheKey), respBytes, populationStatsCacheExpire); err != nil {
		log.Errorf("failed to write population stats cache: %s", err)
	}

	return stats, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// serverMessage extracts a human readable message from an error response
// body, falling back to the raw body.
func serverMessage(respBytes []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(respBytes, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Detail != "" {
			return errResp.Detail
		}
	}
	return string(respBytes)
}
